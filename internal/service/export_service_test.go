package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/placement-api/internal/dto"
	appErrors "github.com/noah-isme/placement-api/pkg/errors"
)

func TestExportServiceResults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.enroll(t, "CS", csStudents()...)
	id, err := f.driveSvc.Submit(ctx, acmePayload(), spocClaims)
	require.NoError(t, err)
	_, err = f.publisher.Publish(ctx, dto.PublishResultsRequest{RequestID: id, Results: "24CS1002, 24CS9999"}, spocClaims)
	require.NoError(t, err)

	svc := NewExportService(f.ledger, f.drives, f.workbooks, nil)

	csv, err := svc.ExportResults(ctx, id, "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", csv.ContentType)
	assert.Equal(t, "results-"+id+".csv", csv.FileName)
	assert.Equal(t, "#,Roll No,Name,Degree,Branch\n1,24CS1002,Bilal,UG,CS\n2,24CS9999,,UG,CS\n", string(csv.Data))

	pdf, err := svc.ExportResults(ctx, id, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, bytes.HasPrefix(pdf.Data, []byte("%PDF")))

	_, err = svc.ExportResults(ctx, id, "xlsx")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = svc.ExportResults(ctx, "missing", "csv")
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}
