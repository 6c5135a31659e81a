package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteTextfile(t *testing.T) {
	GroupsProcessed.WithLabelValues("succeeded", "soil").Inc()
	PendingRecords.WithLabelValues("soil").Set(4)

	path := filepath.Join(t.TempDir(), "fieldsync.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	out := string(data)

	for _, want := range []string{
		`fieldsync_groups_total{record_type="soil",status="succeeded"}`,
		`fieldsync_pending_records{record_type="soil"} 4`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("textfile missing %q", want)
		}
	}
}
