package service_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"rentexpress/internal/apperr"
	"rentexpress/internal/models"
	"rentexpress/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestExportService_Ledger(t *testing.T) {
	e := newEnv(t)
	l := e.fx.Landlord("lina")
	other := e.fx.Landlord("lars")
	lease := e.fx.Lease(e.fx.Property(l, "1 Elm St"), e.fx.Tenant("tom", ""), models.LeaseActive)
	e.fx.Charge(lease, 1200)
	e.fx.Payment(lease, 1200)
	e.fx.Charge(e.fx.Lease(e.fx.Property(other, "9 Oak"), e.fx.Tenant("tia", ""), models.LeaseActive), 999)

	rows, err := e.svc.Exports.Ledger(e.ctx, l)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	types := map[string]string{}
	for _, r := range rows {
		types[r.Type] = r.Amount.StringFixed(2)
	}
	assert.Equal(t, "1200.00", types["charge"])
	assert.Equal(t, "-1200.00", types["payment"])

	_, err = e.svc.Exports.Ledger(e.ctx, e.fx.Tenant("tess", ""))
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	t.Run("csv", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, service.WriteCSV(&buf, rows))
		data := buf.Bytes()
		require.True(t, bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}))
		records, err := csv.NewReader(bytes.NewReader(data[3:])).ReadAll()
		require.NoError(t, err)
		require.Len(t, records, 3)
		assert.Equal(t, "Date", records[0][0])
	})

	t.Run("xlsx", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, service.WriteXLSX(&buf, rows))
		f, err := excelize.OpenReader(&buf)
		require.NoError(t, err)
		defer f.Close()
		got, err := f.GetRows("Ledger")
		require.NoError(t, err)
		require.Len(t, got, 3)
		assert.Equal(t, "Type", got[0][1])
	})
}

func TestLedgerEscapesFormulaText(t *testing.T) {
	rows := []service.LedgerRow{
		{Date: "2026-01-01", Type: "charge", ID: "c1", Description: "=HYPERLINK(\"http://x\")", Category: "+fee", Amount: decimal.NewFromInt(10)},
		{Date: "2026-01-02", Type: "payment", ID: "p1", Description: "Payment (card)", Category: "payment", Amount: decimal.NewFromInt(-10)},
	}

	var buf bytes.Buffer
	require.NoError(t, service.WriteCSV(&buf, rows))
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, `'=HYPERLINK("http://x")`, records[1][4])
	assert.Equal(t, "'+fee", records[1][5])
	assert.Equal(t, "Payment (card)", records[2][4])
	assert.Equal(t, "-10.00", records[2][6])

	buf.Reset()
	require.NoError(t, service.WriteXLSX(&buf, rows))
	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Ledger", "E2")
	require.NoError(t, err)
	assert.Equal(t, `'=HYPERLINK("http://x")`, v)
	formula, err := f.GetCellFormula("Ledger", "E2")
	require.NoError(t, err)
	assert.Empty(t, formula)
}
