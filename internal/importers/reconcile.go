package importers

import (
	"strconv"
	"strings"

	"github.com/mrlokans/ipcboard/internal/entities"
	"github.com/mrlokans/ipcboard/internal/ipc2581"
)

// noNet is the pad-stack net value for pads that belong to no net.
const noNet = "no net"

func isNoNet(name string) bool {
	return name == "" || strings.EqualFold(name, noNet)
}

// createNets creates one net per distinct name from the netlist, then one per
// pad-stack net name the netlist did not mention.
func (r *importRun) createNets() error {
	for _, n := range r.doc.LogicalNets() {
		if n.Name == "" {
			r.skip(PhaseNets, ReasonUnnamedNet, "logical net without name")
			continue
		}
		created, err := r.createNet(n.Name, entities.ConnectivitySourceNetList)
		if err != nil {
			return err
		}
		if created {
			r.result.Stats.NetsFromNetList++
		}
	}

	for _, ps := range r.doc.PadStacks() {
		if isNoNet(ps.Net) {
			continue
		}
		created, err := r.createNet(ps.Net, entities.ConnectivitySourcePadStack)
		if err != nil {
			return err
		}
		if created {
			r.result.Stats.NetsFromPadStacks++
		}
	}

	r.result.Stats.Nets = r.result.Stats.NetsFromNetList + r.result.Stats.NetsFromPadStacks
	return nil
}

func (r *importRun) createNet(name string, source entities.ConnectivitySource) (bool, error) {
	if _, exists := r.nets[name]; exists {
		return false, nil
	}
	net := &entities.LogicalNet{BoardID: r.board.ID, Name: name, Source: source}
	if err := r.tx.CreateLogicalNet(r.ctx, net); err != nil {
		return false, err
	}
	r.nets[name] = net.ID
	return true, nil
}

// connectNetPins records net membership from the netlist, then from pad
// stacks. A (component, pin) pair keeps the first net it was assigned.
func (r *importRun) connectNetPins() error {
	for _, n := range r.doc.LogicalNets() {
		netID, ok := r.nets[n.Name]
		if !ok {
			continue
		}
		for _, ref := range n.Pins {
			if err := r.connect(n.Name, netID, ref, entities.ConnectivitySourceNetList); err != nil {
				return err
			}
		}
	}

	for _, ps := range r.doc.PadStacks() {
		if isNoNet(ps.Net) {
			continue
		}
		netID, ok := r.nets[ps.Net]
		if !ok {
			continue
		}
		for _, ref := range ps.Pins {
			if err := r.connect(ps.Net, netID, ref, entities.ConnectivitySourcePadStack); err != nil {
				return err
			}
		}
	}

	r.result.Stats.NetPins = r.result.Stats.NetPinsFromNetList + r.result.Stats.NetPinsFromPadStacks
	return nil
}

func (r *importRun) connect(netName string, netID uint, ref ipc2581.PinRef, source entities.ConnectivitySource) error {
	component, ok := r.components[ref.ComponentRef]
	if !ok {
		r.skip(PhaseNetPins, ReasonUnknownComponent, "net %q references unknown component %q", netName, ref.ComponentRef)
		return nil
	}
	pin := r.resolvePin(component.PackageID, ref.Pin)
	if pin == nil {
		r.skip(PhaseNetPins, ReasonUnknownPin, "net %q references unknown pin %q of %q", netName, ref.Pin, ref.ComponentRef)
		return nil
	}

	key := pinKey{componentID: component.ID, pinID: pin.ID}
	if _, exists := r.connected[key]; exists {
		r.result.Stats.NetPinsAlreadyConnected++
		return nil
	}

	netPin := &entities.NetPin{
		ComponentID:  component.ID,
		PinID:        pin.ID,
		LogicalNetID: netID,
		Source:       source,
	}
	if err := r.tx.CreateNetPin(r.ctx, netPin); err != nil {
		return err
	}
	r.connected[key] = struct{}{}

	switch source {
	case entities.ConnectivitySourceNetList:
		r.result.Stats.NetPinsFromNetList++
	case entities.ConnectivitySourcePadStack:
		r.result.Stats.NetPinsFromPadStacks++
	}
	return nil
}

// resolvePin matches a pin reference against the package's pins by name or
// by stored id, in document order.
func (r *importRun) resolvePin(packageID uint, ref string) *entities.Pin {
	if ref == "" {
		return nil
	}
	for _, pin := range r.pins[packageID] {
		if pin.Name == ref || strconv.FormatUint(uint64(pin.ID), 10) == ref {
			return pin
		}
	}
	return nil
}
