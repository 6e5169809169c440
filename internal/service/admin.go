package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AdminService backs the compliance views: accounts, audit trail and
// encrypted snapshots.
type AdminService struct {
	base
	encryptKey string
	backupDir  string
}

// Page is a 1-based page request.
type Page struct {
	Page int
	Size int
}

func (p Page) normalize(def int) Page {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Size <= 0 || p.Size > 100 {
		p.Size = def
	}
	return p
}

func (p Page) offset() int { return (p.Page - 1) * p.Size }

// UserFilter narrows ListUsers.
type UserFilter struct {
	Role models.Role
	Q    string
}

func (s *AdminService) ListUsers(ctx context.Context, a access.Actor, f UserFilter, page Page) ([]models.User, int64, error) {
	if err := a.Require(models.RoleAdmin); err != nil {
		return nil, 0, err
	}
	page = page.normalize(20)
	q := s.db.WithContext(ctx).Model(&models.User{})
	if f.Role != "" {
		if !f.Role.Valid() {
			return nil, 0, apperr.Validationf("invalid role %q", f.Role)
		}
		q = q.Where("role = ?", f.Role)
	}
	if f.Q = trim(f.Q); f.Q != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(f.Q)+"%")
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count users", err)
	}
	users := []models.User{}
	if err := q.Order("created_at DESC").Limit(page.Size).Offset(page.offset()).Find(&users).Error; err != nil {
		return nil, 0, apperr.Internal("list users", err)
	}
	return users, total, nil
}

// AuditEntry is an audit log row with its action decrypted.
type AuditEntry struct {
	models.AuditLog
	Action string `json:"action"`
}

// AuditFilter narrows ListAuditLogs. Dates are YYYY-MM-DD; End is inclusive.
type AuditFilter struct {
	ActorID string
	Start   string
	End     string
}

// RecordAudit stores one request summary, encrypting the action text.
func (s *AdminService) RecordAudit(ctx context.Context, entry models.AuditLog, action string) error {
	enc, err := util.EncryptField(s.encryptKey, action)
	if err != nil {
		return fmt.Errorf("encrypt audit action: %w", err)
	}
	entry.ActionEnc = enc
	return s.db.WithContext(ctx).Create(&entry).Error
}

func (s *AdminService) ListAuditLogs(ctx context.Context, a access.Actor, f AuditFilter, page Page) ([]AuditEntry, int64, error) {
	if err := a.Require(models.RoleAdmin); err != nil {
		return nil, 0, err
	}
	page = page.normalize(20)
	q := s.db.WithContext(ctx).Model(&models.AuditLog{})
	if f.ActorID != "" {
		q = q.Where("actor_id = ?", f.ActorID)
	}
	if f.Start != "" {
		start, err := time.Parse(util.DateLayout, f.Start)
		if err != nil {
			return nil, 0, apperr.Validation("start must be YYYY-MM-DD")
		}
		q = q.Where("created_at >= ?", start)
	}
	if f.End != "" {
		end, err := time.Parse(util.DateLayout, f.End)
		if err != nil {
			return nil, 0, apperr.Validation("end must be YYYY-MM-DD")
		}
		q = q.Where("created_at < ?", end.Add(24*time.Hour))
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("count audit logs", err)
	}
	var logs []models.AuditLog
	if err := q.Order("created_at DESC, id DESC").Limit(page.Size).Offset(page.offset()).Find(&logs).Error; err != nil {
		return nil, 0, apperr.Internal("list audit logs", err)
	}
	items := make([]AuditEntry, 0, len(logs))
	for _, l := range logs {
		items = append(items, AuditEntry{AuditLog: l, Action: util.DecryptField(s.encryptKey, l.ActionEnc)})
	}
	return items, total, nil
}

// snapshot is the plaintext content of a backup file.
type snapshot struct {
	CreatedAt   time.Time                   `json:"createdAt"`
	CreatedBy   string                      `json:"createdBy"`
	Users       []models.User               `json:"users"`
	Properties  []models.Property           `json:"properties"`
	Leases      []models.Lease              `json:"leases"`
	Payments    []models.Payment            `json:"payments"`
	Charges     []models.Charge             `json:"charges"`
	Maintenance []models.MaintenanceRequest `json:"maintenance"`
	Documents   []models.Document           `json:"documents"`
}

// CreateBackup writes an AES-encrypted JSON snapshot of the domain tables.
func (s *AdminService) CreateBackup(ctx context.Context, a access.Actor) (models.Backup, error) {
	if err := a.Require(models.RoleAdmin); err != nil {
		return models.Backup{}, err
	}
	snap := snapshot{CreatedAt: s.now().UTC(), CreatedBy: a.ID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, dst := range []any{&snap.Users, &snap.Properties, &snap.Leases, &snap.Payments, &snap.Charges, &snap.Maintenance, &snap.Documents} {
			if err := tx.Order("created_at ASC").Find(dst).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Backup{}, apperr.Internal("read snapshot", err)
	}

	raw, err := json.Marshal(&snap)
	if err != nil {
		return models.Backup{}, apperr.Internal("encode snapshot", err)
	}
	enc, err := util.EncryptAES(s.encryptKey, raw)
	if err != nil {
		return models.Backup{}, apperr.Internal("encrypt snapshot", err)
	}
	if err := os.MkdirAll(s.backupDir, 0o755); err != nil {
		return models.Backup{}, apperr.Internal("create backup dir", err)
	}

	name := fmt.Sprintf("backup-%s-%s.bin", snap.CreatedAt.Format("20060102T150405"), uuid.NewString()[:8])
	path := filepath.Join(s.backupDir, name)
	if err := os.WriteFile(path, enc, 0o600); err != nil {
		return models.Backup{}, apperr.Internal("write backup", err)
	}

	b := models.Backup{AdminID: a.ID, FileName: name, FilePath: path, Size: int64(len(enc))}
	if err := s.db.WithContext(ctx).Create(&b).Error; err != nil {
		_ = os.Remove(path)
		return b, apperr.Internal("record backup", err)
	}
	return b, nil
}

func (s *AdminService) ListBackups(ctx context.Context, a access.Actor) ([]models.Backup, error) {
	if err := a.Require(models.RoleAdmin); err != nil {
		return nil, err
	}
	list := []models.Backup{}
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error; err != nil {
		return nil, apperr.Internal("list backups", err)
	}
	return list, nil
}

// Backup returns a backup record whose file still exists.
func (s *AdminService) Backup(ctx context.Context, a access.Actor, id string) (models.Backup, error) {
	var b models.Backup
	if err := a.Require(models.RoleAdmin); err != nil {
		return b, err
	}
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return b, storeErr("load backup", "backup", err)
	}
	if _, err := os.Stat(b.FilePath); err != nil {
		return b, apperr.NotFound("backup file missing")
	}
	return b, nil
}

// DeleteBackup removes the file and then the record.
func (s *AdminService) DeleteBackup(ctx context.Context, a access.Actor, id string) error {
	if err := a.Require(models.RoleAdmin); err != nil {
		return err
	}
	var b models.Backup
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return storeErr("load backup", "backup", err)
	}
	if err := os.Remove(b.FilePath); err != nil && !os.IsNotExist(err) {
		return apperr.Internal("remove backup file", err)
	}
	if err := s.db.WithContext(ctx).Delete(&b).Error; err != nil {
		return apperr.Internal("delete backup", err)
	}
	return nil
}

// ReadBackup decrypts a backup file into its snapshot counts, used to
// verify a backup is restorable.
func (s *AdminService) ReadBackup(ctx context.Context, a access.Actor, id string) (map[string]int, error) {
	b, err := s.Backup(ctx, a, id)
	if err != nil {
		return nil, err
	}
	enc, err := os.ReadFile(b.FilePath)
	if err != nil {
		return nil, apperr.Internal("read backup", err)
	}
	raw, err := util.DecryptAES(s.encryptKey, enc)
	if err != nil {
		return nil, apperr.Validation("backup cannot be decrypted with the current key")
	}
	var snap snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, apperr.Validation("backup content is malformed")
	}
	return map[string]int{
		"users":       len(snap.Users),
		"properties":  len(snap.Properties),
		"leases":      len(snap.Leases),
		"payments":    len(snap.Payments),
		"charges":     len(snap.Charges),
		"maintenance": len(snap.Maintenance),
		"documents":   len(snap.Documents),
	}, nil
}
