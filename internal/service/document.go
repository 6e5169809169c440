package service

import (
	"context"
	"fmt"
	"net/url"

	"rentexpress/internal/access"
	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/scope"
)

type DocumentService struct {
	base
}

type DocumentInput struct {
	Name string `json:"name" binding:"required,max=128"`
	Type string `json:"type" binding:"required,max=32"`
	URL  string `json:"url" binding:"max=512"`
}

func (s *DocumentService) List(ctx context.Context, a access.Actor) ([]models.Document, error) {
	rows, err := s.rows(ctx, a, scope.Document)
	if err != nil {
		return nil, err
	}
	list := []models.Document{}
	err = s.db.WithContext(ctx).Scopes(rows.Apply).
		Order("created_at DESC").
		Find(&list).Error
	return list, storeErr("list documents", "document", err)
}

func (s *DocumentService) Get(ctx context.Context, a access.Actor, id string) (models.Document, error) {
	var d models.Document
	rows, err := s.rows(ctx, a, scope.Document)
	if err != nil {
		return d, err
	}
	return d, s.find(ctx, rows, "documents", id, &d, "document")
}

func (s *DocumentService) Create(ctx context.Context, a access.Actor, in DocumentInput) (models.Document, error) {
	if err := a.Require(models.RoleTenant); err != nil {
		return models.Document{}, err
	}
	in.Name, in.Type, in.URL = trim(in.Name), trim(in.Type), trim(in.URL)
	if in.Name == "" || in.Type == "" {
		return models.Document{}, apperr.Validation("name and type are required")
	}
	if in.URL != "" {
		u, err := url.Parse(in.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return models.Document{}, apperr.Validation("url must be an http(s) address")
		}
	}
	d := models.Document{TenantID: a.ID, Name: in.Name, Type: in.Type, URL: in.URL}
	if err := s.db.WithContext(ctx).Create(&d).Error; err != nil {
		return d, apperr.Internal("create document", err)
	}
	return d, nil
}

// Download returns placeholder content for an owned document. Documents
// are not backed by a file store.
func (s *DocumentService) Download(ctx context.Context, a access.Actor, id string) (string, []byte, error) {
	d, err := s.Get(ctx, a, id)
	if err != nil {
		return "", nil, err
	}
	body := fmt.Sprintf("Document: %s\nType: %s\nUploaded: %s\n",
		d.Name, d.Type, d.CreatedAt.Format("2006-01-02 15:04"))
	return d.Name + ".txt", []byte(body), nil
}
