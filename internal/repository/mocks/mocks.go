package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/propside/syncd/internal/domain/audit"
	"github.com/propside/syncd/internal/domain/coordination"
	syncdom "github.com/propside/syncd/internal/domain/sync"
	"github.com/propside/syncd/internal/domain/version"
)

// DocumentRepository is a mock for version.DocumentRepository.
type DocumentRepository struct {
	mock.Mock
}

func (m *DocumentRepository) Create(ctx context.Context, companyID string, doc *version.Document) error {
	args := m.Called(ctx, companyID, doc)
	return args.Error(0)
}

func (m *DocumentRepository) Get(ctx context.Context, companyID, id string) (*version.Document, error) {
	args := m.Called(ctx, companyID, id)
	if doc, ok := args.Get(0).(*version.Document); ok {
		return doc, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *DocumentRepository) List(ctx context.Context, companyID string) ([]version.Document, error) {
	args := m.Called(ctx, companyID)
	if list, ok := args.Get(0).([]version.Document); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// VersionRepository is a mock for version.VersionRepository.
type VersionRepository struct {
	mock.Mock
}

func (m *VersionRepository) Insert(ctx context.Context, companyID string, v *version.Version) error {
	args := m.Called(ctx, companyID, v)
	return args.Error(0)
}

func (m *VersionRepository) Get(ctx context.Context, companyID, id string) (*version.Version, error) {
	args := m.Called(ctx, companyID, id)
	if v, ok := args.Get(0).(*version.Version); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionRepository) Latest(ctx context.Context, companyID, documentID string) (*version.Version, error) {
	args := m.Called(ctx, companyID, documentID)
	if v, ok := args.Get(0).(*version.Version); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionRepository) History(ctx context.Context, companyID, documentID string, limit int) ([]version.Version, error) {
	args := m.Called(ctx, companyID, documentID, limit)
	if list, ok := args.Get(0).([]version.Version); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionRepository) LatestAll(ctx context.Context, companyID string) ([]version.Version, error) {
	args := m.Called(ctx, companyID)
	if list, ok := args.Get(0).([]version.Version); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// SyncStateRepository is a mock for sync.StateRepository.
type SyncStateRepository struct {
	mock.Mock
}

func (m *SyncStateRepository) Create(ctx context.Context, companyID string, st *syncdom.State) error {
	args := m.Called(ctx, companyID, st)
	return args.Error(0)
}

func (m *SyncStateRepository) GetByDocument(ctx context.Context, companyID, documentID string) (*syncdom.State, error) {
	args := m.Called(ctx, companyID, documentID)
	if st, ok := args.Get(0).(*syncdom.State); ok {
		return st, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *SyncStateRepository) Update(ctx context.Context, companyID string, st *syncdom.State) error {
	args := m.Called(ctx, companyID, st)
	return args.Error(0)
}

func (m *SyncStateRepository) List(ctx context.Context, companyID string) ([]syncdom.State, error) {
	args := m.Called(ctx, companyID)
	if list, ok := args.Get(0).([]syncdom.State); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// ConflictRepository is a mock for sync.ConflictRepository.
type ConflictRepository struct {
	mock.Mock
}

func (m *ConflictRepository) Create(ctx context.Context, companyID string, c *syncdom.Conflict) error {
	args := m.Called(ctx, companyID, c)
	return args.Error(0)
}

func (m *ConflictRepository) Get(ctx context.Context, companyID, id string) (*syncdom.Conflict, error) {
	args := m.Called(ctx, companyID, id)
	if c, ok := args.Get(0).(*syncdom.Conflict); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConflictRepository) PendingByDocument(ctx context.Context, companyID, documentID string) (*syncdom.Conflict, error) {
	args := m.Called(ctx, companyID, documentID)
	if c, ok := args.Get(0).(*syncdom.Conflict); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *ConflictRepository) MarkResolved(ctx context.Context, companyID string, c *syncdom.Conflict) error {
	args := m.Called(ctx, companyID, c)
	return args.Error(0)
}

// RuleRepository is a mock for coordination.RuleRepository.
type RuleRepository struct {
	mock.Mock
}

func (m *RuleRepository) Create(ctx context.Context, companyID string, r *coordination.Rule) error {
	args := m.Called(ctx, companyID, r)
	return args.Error(0)
}

func (m *RuleRepository) Get(ctx context.Context, companyID, id string) (*coordination.Rule, error) {
	args := m.Called(ctx, companyID, id)
	if r, ok := args.Get(0).(*coordination.Rule); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RuleRepository) List(ctx context.Context, companyID string, activeOnly bool) ([]coordination.Rule, error) {
	args := m.Called(ctx, companyID, activeOnly)
	if list, ok := args.Get(0).([]coordination.Rule); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RuleRepository) SetActive(ctx context.Context, companyID, id string, active bool) error {
	args := m.Called(ctx, companyID, id, active)
	return args.Error(0)
}

// CoordinationLogRepository is a mock for coordination.LogRepository.
type CoordinationLogRepository struct {
	mock.Mock
}

func (m *CoordinationLogRepository) Append(ctx context.Context, companyID string, entry *coordination.LogEntry) error {
	args := m.Called(ctx, companyID, entry)
	return args.Error(0)
}

func (m *CoordinationLogRepository) List(ctx context.Context, companyID string, q coordination.LogQuery) ([]coordination.LogEntry, error) {
	args := m.Called(ctx, companyID, q)
	if list, ok := args.Get(0).([]coordination.LogEntry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// VersionStore is a mock for the sync and coordination version store ports.
type VersionStore struct {
	mock.Mock
}

func (m *VersionStore) Append(ctx context.Context, companyID string, req version.AppendRequest) (*version.Version, error) {
	args := m.Called(ctx, companyID, req)
	if v, ok := args.Get(0).(*version.Version); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionStore) Get(ctx context.Context, companyID, id string) (*version.Version, error) {
	args := m.Called(ctx, companyID, id)
	if v, ok := args.Get(0).(*version.Version); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionStore) Latest(ctx context.Context, companyID, documentID string) (*version.Version, error) {
	args := m.Called(ctx, companyID, documentID)
	if v, ok := args.Get(0).(*version.Version); ok {
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionStore) History(ctx context.Context, companyID, documentID string, limit int) ([]version.Version, error) {
	args := m.Called(ctx, companyID, documentID, limit)
	if list, ok := args.Get(0).([]version.Version); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionStore) LatestAll(ctx context.Context, companyID string) ([]version.Version, error) {
	args := m.Called(ctx, companyID)
	if list, ok := args.Get(0).([]version.Version); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *VersionStore) ListDocuments(ctx context.Context, companyID string) ([]version.Document, error) {
	args := m.Called(ctx, companyID)
	if list, ok := args.Get(0).([]version.Document); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRepository is a mock for audit.Repository.
type AuditRepository struct {
	mock.Mock
}

func (m *AuditRepository) Record(ctx context.Context, companyID string, entry *audit.Entry) error {
	args := m.Called(ctx, companyID, entry)
	return args.Error(0)
}

func (m *AuditRepository) List(ctx context.Context, companyID string, opts audit.ListOptions) ([]audit.Entry, error) {
	args := m.Called(ctx, companyID, opts)
	if list, ok := args.Get(0).([]audit.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

// AuditRecorder is a mock for the domain AuditRecorder ports.
type AuditRecorder struct {
	mock.Mock
}

func (m *AuditRecorder) Record(ctx context.Context, companyID string, entry audit.Entry) {
	m.Called(ctx, companyID, entry)
}
