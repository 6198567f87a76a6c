package tablefuse

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/tablefuse/tablefuse/model"
)

func TestJobChainingIsImmutable(t *testing.T) {
	base := Open("doc.pdf").DetectorService("http://localhost:8500")
	withWorkers := base.Workers(4).PageTimeout(time.Minute)

	if base.options.workers != 0 {
		t.Errorf("base job mutated: workers = %d", base.options.workers)
	}
	if withWorkers.options.workers != 4 {
		t.Errorf("workers = %d, want 4", withWorkers.options.workers)
	}
	if withWorkers.options.detectorURL != "http://localhost:8500" {
		t.Errorf("detectorURL lost in chain: %q", withWorkers.options.detectorURL)
	}
}

func TestJobTrimsServiceURLs(t *testing.T) {
	j := Open("doc.pdf").DetectorService("http://svc:9000/").SceneTextService("http://text:9001/")
	if j.options.detectorURL != "http://svc:9000" {
		t.Errorf("detectorURL = %q", j.options.detectorURL)
	}
	if j.options.sceneTextURL != "http://text:9001" {
		t.Errorf("sceneTextURL = %q", j.options.sceneTextURL)
	}
}

func TestJobRunConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		job  *Job
		want string
	}{
		{"no filename", Open("").DetectorService("http://x"), "no filename"},
		{"no detector", Open("doc.pdf"), "no detector service"},
		{"bad dpi", Open("doc.pdf").DetectorService("http://x").DPI(0), "dpi must be positive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.job.Run(context.Background())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Run() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

type boldCellClassifier struct{}

func (boldCellClassifier) CellScore(cell model.LinkedCell) (header, body float64) {
	if cell.Row == 0 {
		return 1, 0
	}
	return 0, 1
}

func TestJobWiresHeaderClassifier(t *testing.T) {
	c := boldCellClassifier{}
	job := Open("doc.pdf").
		DetectorService("http://localhost:8500").
		HeaderClassifier(c)

	proc, err := job.buildProcessor()
	if err != nil {
		t.Fatal(err)
	}
	if proc.Headers.Classifier != c {
		t.Error("processor did not receive the configured classifier")
	}

	plain, err := Open("doc.pdf").DetectorService("http://localhost:8500").buildProcessor()
	if err != nil {
		t.Fatal(err)
	}
	if plain.Headers.Classifier != nil {
		t.Error("classifier should default to nil")
	}
}

func TestPageInputs(t *testing.T) {
	inputs := pageInputs([]string{"out/images/0001.png", "out/images/0002.png"})
	if len(inputs) != 2 {
		t.Fatalf("got %d inputs, want 2", len(inputs))
	}
	if inputs[0].PageNum != 1 || inputs[1].PageNum != 2 {
		t.Errorf("page numbers = %d, %d", inputs[0].PageNum, inputs[1].PageNum)
	}
	if inputs[0].LayerName != "0001" || inputs[1].LayerName != "0002" {
		t.Errorf("layer names = %q, %q", inputs[0].LayerName, inputs[1].LayerName)
	}
}

func TestMustPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Must did not panic on error")
		}
	}()
	_, err := Open("").Run(context.Background())
	Must(struct{}{}, err)
}
