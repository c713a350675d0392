package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/rpattn/adminkit/internal/backend"
	"github.com/rpattn/adminkit/internal/domain"
)

const configTemplate = `
api:
  base_url: %s/
logging:
  level: error
resources:
  - name: patients
    verbose_name: Patients
    list_fields:
      - header: Id
        accessor: id
      - header: First name
        accessor: first_name
    wizards:
      - name: onboarding
        title: Onboarding
        steps:
          begin:
            resource_name: patients
            widgets:
              - name: first_name
                required: true
          test:
            resource_name: patients
          done:
            resource_name: patients
        machine:
          begin:
            forward: test
          test:
            forward: done
            backward: begin
  - name: audit
    hide_list_view: true
`

func setup(t *testing.T) string {
	t.Helper()
	store := backend.NewMemoryStore("patients", "audit")
	for i := 1; i <= 25; i++ {
		_, err := store.Create(context.Background(), "patients", domain.Record{
			"id":         i,
			"first_name": fmt.Sprintf("Patient %02d", i),
		})
		require.NoError(t, err)
	}
	srv := httptest.NewServer(backend.NewHandler(store,
		[]backend.Resource{{Name: "patients", Required: []string{"first_name"}}, {Name: "audit"}},
		backend.WithPageSize(10, 10)))
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(configTemplate, srv.URL)), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestResourcesCommand(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, "resources", "--config", cfg)
	require.NoError(t, err)
	assert.Contains(t, out, "patients")
	assert.Contains(t, out, "onboarding")
	assert.NotContains(t, out, "audit")
}

func TestListCommand(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, "list", "patients", "--config", cfg, "--page", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "FIRST NAME")
	assert.Contains(t, out, "Patient 11")
	assert.NotContains(t, out, "Patient 21")
	assert.Contains(t, out, "page 2 of 3 (25 records)")

	out, err = execute(t, "list", "patients", "--config", cfg, "--filter", "first_name__icontains=patient 07")
	require.NoError(t, err)
	assert.Contains(t, out, "Patient 07")
	assert.Contains(t, out, "page 1 of 1 (1 records)")

	_, err = execute(t, "list", "doctors", "--config", cfg)
	assert.Error(t, err)

	_, err = execute(t, "list", "patients", "--config", cfg, "--filter", "broken")
	assert.Error(t, err)
}

func TestWizardCommand(t *testing.T) {
	cfg := setup(t)

	out, err := execute(t, "wizard", "patients", "onboarding", "--config", cfg, "forward", "sideways", "forward")
	require.NoError(t, err)
	assert.Contains(t, out, "[begin] patients")
	assert.Contains(t, out, "  - first_name *")
	assert.Contains(t, out, `"test" has no transition "sideways"`)
	assert.Contains(t, out, "[done] patients")
	assert.Contains(t, out, "done\n")

	_, err = execute(t, "wizard", "patients", "missing", "--config", cfg)
	assert.Error(t, err)
}

func TestExportCommand(t *testing.T) {
	cfg := setup(t)
	dir := t.TempDir()

	xlsxPath := filepath.Join(dir, "patients.xlsx")
	out, err := execute(t, "export", "patients", "--config", cfg, "--out", xlsxPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 25 records")

	f, err := excelize.OpenFile(xlsxPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetList()[0])
	require.NoError(t, err)
	require.Len(t, rows, 26)
	assert.Equal(t, []string{"Id", "First name"}, rows[0])
	assert.Equal(t, []string{"25", "Patient 25"}, rows[25])

	csvPath := filepath.Join(dir, "patients.csv")
	_, err = execute(t, "export", "patients", "--config", cfg, "--out", csvPath, "--filter", "id__in=1,2")
	require.NoError(t, err)
	body, err := os.ReadFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "Id,First name\n1,Patient 01\n2,Patient 02\n", string(body))
}

func TestImportCommand(t *testing.T) {
	cfg := setup(t)
	csvPath := filepath.Join(t.TempDir(), "new.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("Id,First name\n30,New\n31,\n"), 0o600))

	out, err := execute(t, "import", "patients", "--config", cfg, "--in", csvPath)
	require.Error(t, err)
	assert.Contains(t, out, "imported 1 of 2 records")
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "first_name: This field is required.")

	out, err = execute(t, "list", "patients", "--config", cfg, "--filter", "id=30")
	require.NoError(t, err)
	assert.Contains(t, out, "New")
}

func TestParseFilters(t *testing.T) {
	filters, err := parseFilters([]string{"id__in=1,2", "name=a=b"})
	require.NoError(t, err)
	assert.Equal(t, []domain.Filter{
		{Name: "id", Value: "1,2", Operation: "in"},
		{Name: "name", Value: "a=b"},
	}, filters)
}
