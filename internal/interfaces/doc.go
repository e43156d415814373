// Package interfaces documents the core abstractions used throughout the application.
//
// # Interface Categories
//
// ## Import Pipeline
//
//   - importers.Store / importers.Writer: transactional board writes (internal/importers/store.go)
//   - uploads.Store: raw document storage, local disk or S3 (internal/uploads/store.go)
//   - services.ImportRecords: import history (internal/services/interfaces.go)
//   - services.ImportQueue: hands uploads to background workers (internal/services/interfaces.go)
//   - services.Auditor: import and maintenance audit trail (internal/services/interfaces.go)
//
// ## HTTP Boundary
//
//   - http.ImportRunner: uploads, previews and import history (internal/http/stores.go)
//   - http.BoardReader: read queries over imported boards (internal/http/stores.go)
//   - http.TaskRunner: task enqueue and status (internal/http/stores.go)
//   - http.AuditReader: audit log queries (internal/http/audit.go)
//
// ## Background Work
//
//   - tasks.DocumentImporter, tasks.AuditEventCleaner, tasks.UploadCleaner:
//     what the queue processors call back into (internal/tasks/)
//   - scheduler.TaskEnqueuer: the maintenance cron job's view of the queue
//
// # Adding a New Report
//
//  1. Add a kind constant and a method on reports.Generator that writes to an io.Writer
//
//     func (g *Generator) Layers(ctx context.Context, boardID uint, w io.Writer) error
//
//  2. Dispatch it from Generator.Write. The HTTP route and the CLI report
//     command pick it up by kind.
//
// # Adding a New Upload Backend
//
//  1. Implement uploads.Store in internal/uploads/
//
//     func (s *GCSStore) Save(ctx context.Context, fileName string, r io.Reader) (string, error)
//     func (s *GCSStore) Open(ctx context.Context, key string) (io.ReadCloser, error)
//     func (s *GCSStore) Delete(ctx context.Context, key string) error
//
//  2. Add the backend to newUploadStore in internal/entrypoint/uploads.go
//
//  3. Add a compile-time check to checks.go
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the full list.
package interfaces
