// Package audit records who imported which board and what maintenance ran.
package audit

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/ipcboard/internal/database/audit"
	"github.com/mrlokans/ipcboard/internal/entities"
)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	log  *zap.Logger
	wg   sync.WaitGroup
}

func NewService(repo *audit.Repository, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{repo: repo, log: log}
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background.
func (s *Service) LogAsync(event *entities.AuditEvent) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(event); err != nil {
			s.log.Error("failed to log audit event",
				zap.String("action", event.Action),
				zap.Error(err))
		}
	}()
}

// Wait blocks until every event queued by LogAsync is written.
func (s *Service) Wait() {
	s.wg.Wait()
}

// ImportEntry describes one finished import attempt.
type ImportEntry struct {
	Origin      string // "upload" or "cli"
	FileName    string
	BoardID     uint
	BoardName   string
	Stats       any
	Diagnostics int
	IPAddress   string
	UserAgent   string
	Err         error
}

// LogImport records an import event against the imported board.
func (s *Service) LogImport(e ImportEntry) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventImport,
		Action:      e.Origin + "_import",
		Description: truncate(fmt.Sprintf("Imported board %q from %s", e.BoardName, e.FileName), 500),
		EntityType:  entities.AuditEntityBoard,
		IPAddress:   e.IPAddress,
		UserAgent:   truncate(e.UserAgent, 500),
		Status:      entities.AuditStatusSuccess,
	}
	if e.BoardID != 0 {
		id := e.BoardID
		event.EntityID = &id
	}

	metadata := map[string]any{
		"file_name":   e.FileName,
		"board_name":  e.BoardName,
		"diagnostics": e.Diagnostics,
	}
	if e.Stats != nil {
		metadata["stats"] = e.Stats
	}
	if mdBytes, err := json.Marshal(metadata); err == nil {
		event.Metadata = string(mdBytes)
	}

	if e.Err != nil {
		event.Status = entities.AuditStatusFailed
		event.Description = truncate(fmt.Sprintf("Import of %s failed", e.FileName), 500)
		event.ErrorMsg = truncate(e.Err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogMaintenance records a cleanup run.
func (s *Service) LogMaintenance(action, description string, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventMaintenance,
		Action:      action,
		Description: truncate(description, 500),
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(event)
}

func (s *Service) GetEvents(limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(limit, offset)
}

func (s *Service) GetEventsByType(eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEventsByType(eventType, limit, offset)
}

// GetBoardEvents returns the audit trail of one board.
func (s *Service) GetBoardEvents(boardID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEntityEvents(entities.AuditEntityBoard, boardID)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(cutoff)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
