package service_test

import (
	"testing"

	"rentexpress/internal/apperr"
	"rentexpress/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocumentService(t *testing.T) {
	e := newEnv(t)
	t1 := e.fx.Tenant("tom", "")
	t2 := e.fx.Tenant("tia", "")
	l := e.fx.Landlord("lina")

	d, err := e.svc.Documents.Create(e.ctx, t1, service.DocumentInput{Name: "Lease agreement", Type: "pdf", URL: "https://files.example.com/lease.pdf"})
	require.NoError(t, err)
	assert.Equal(t, t1.ID, d.TenantID)

	_, err = e.svc.Documents.Create(e.ctx, t1, service.DocumentInput{Name: "x", Type: "pdf", URL: "ftp://files"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, err := e.svc.Documents.List(e.ctx, t1)
	require.NoError(t, err)
	require.Len(t, list, 1)

	list, err = e.svc.Documents.List(e.ctx, t2)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = e.svc.Documents.List(e.ctx, l)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	name, body, err := e.svc.Documents.Download(e.ctx, t1, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lease agreement.txt", name)
	assert.Contains(t, string(body), "Lease agreement")

	_, _, err = e.svc.Documents.Download(e.ctx, t2, d.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
