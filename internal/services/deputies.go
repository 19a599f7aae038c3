package services

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/zaroda/school-backend/internal/models"
	"github.com/zaroda/school-backend/internal/storage"
	"github.com/zaroda/school-backend/internal/tenant"
)

// deputyList decodes dhoi_account whether it holds one record or a list.
type deputyList []models.PlatformUserRecord

func (l *deputyList) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var one models.PlatformUserRecord
		if err := json.Unmarshal(trimmed, &one); err != nil {
			return err
		}
		*l = deputyList{one}
		return nil
	}
	var many []models.PlatformUserRecord
	if err := json.Unmarshal(trimmed, &many); err != nil {
		return err
	}
	*l = many
	return nil
}

// DeputyAccounts holds deputy-HOI accounts, created by an HOI.
// Always written back as a list.
type DeputyAccounts struct {
	doc *storage.Document[deputyList]
	now func() time.Time
}

func NewDeputyAccounts(kv storage.KV) *DeputyAccounts {
	return &DeputyAccounts{doc: storage.NewDocument[deputyList](kv, KeyDeputyAccounts), now: time.Now}
}

func (d *DeputyAccounts) Bind(kv storage.KV) *DeputyAccounts {
	return &DeputyAccounts{doc: d.doc.Bind(kv), now: d.now}
}

func (d *DeputyAccounts) all(ctx context.Context) (deputyList, error) {
	list, _, err := d.doc.Load(ctx)
	return list, err
}

func (d *DeputyAccounts) FindByEmail(ctx context.Context, email string) (models.PlatformUserRecord, bool, error) {
	list, err := d.all(ctx)
	if err != nil {
		return models.PlatformUserRecord{}, false, err
	}
	email = models.NormalizeEmail(email)
	for _, rec := range list {
		if models.NormalizeEmail(rec.Email) == email {
			return rec, true, nil
		}
	}
	return models.PlatformUserRecord{}, false, nil
}

func (d *DeputyAccounts) FindByID(ctx context.Context, id string) (models.PlatformUserRecord, bool, error) {
	list, err := d.all(ctx)
	if err != nil {
		return models.PlatformUserRecord{}, false, err
	}
	for _, rec := range list {
		if rec.ID == id {
			return rec, true, nil
		}
	}
	return models.PlatformUserRecord{}, false, nil
}

func (d *DeputyAccounts) Add(ctx context.Context, rec models.PlatformUserRecord) (models.PlatformUserRecord, error) {
	list, err := d.all(ctx)
	if err != nil {
		return models.PlatformUserRecord{}, err
	}
	rec.ID = uuid.NewString()
	rec.Role = models.RoleDHOI
	rec.Email = models.NormalizeEmail(rec.Email)
	if rec.Status == "" {
		rec.Status = models.StatusActive
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = d.now().UTC()
	}
	list = append(list, rec)
	return rec, d.doc.Save(ctx, list)
}

func (d *DeputyAccounts) update(ctx context.Context, id string, patch func(*models.PlatformUserRecord)) (models.PlatformUserRecord, bool, error) {
	list, err := d.all(ctx)
	if err != nil {
		return models.PlatformUserRecord{}, false, err
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		patch(&list[i])
		return list[i], true, d.doc.Save(ctx, list)
	}
	return models.PlatformUserRecord{}, false, nil
}

func (d *DeputyAccounts) RecordLogin(ctx context.Context, id string) error {
	at := d.now().UTC()
	_, _, err := d.update(ctx, id, func(r *models.PlatformUserRecord) { r.LastLogin = &at })
	return err
}

func (d *DeputyAccounts) SetStatus(ctx context.Context, id string, status models.AccountStatus) (models.PlatformUserRecord, bool, error) {
	return d.update(ctx, id, func(r *models.PlatformUserRecord) { r.Status = status })
}

func (d *DeputyAccounts) List(ctx context.Context, schoolCode string) ([]models.PlatformUserRecord, error) {
	list, err := d.all(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PlatformUserRecord, 0, len(list))
	for _, rec := range list {
		if schoolCode == "" || tenant.SameSchool(rec.SchoolCode, schoolCode) {
			out = append(out, rec)
		}
	}
	return out, nil
}
