package predict

import (
	"context"
	"os"
	"testing"
	"time"

	"churnpredict/ml"
	"churnpredict/monitoring"
)

func TestReloadKeepsSnapshotOnFailure(t *testing.T) {
	source := copyArtifacts(t)
	svc, err := New(loadArtifacts(t, source), WithSource(source))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := svc.Artifacts()

	if err := os.WriteFile(source.ModelPath, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := svc.Reload(context.Background()); err == nil {
		t.Fatal("expected reload to fail")
	}
	if svc.Artifacts() != before {
		t.Fatal("snapshot replaced after failed reload")
	}
}

func TestReloadRequiresSource(t *testing.T) {
	svc, err := New(loadArtifacts(t, shippedSource()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.Reload(context.Background()); err == nil {
		t.Fatal("expected error without source")
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	source := copyArtifacts(t)
	source.ModelType = ""
	publisher := &fakePublisher{}
	svc, err := New(loadArtifacts(t, source), WithSource(source), WithPublisher(publisher))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Watch(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	tree := &ml.DecisionTree{
		FeatureNames: svc.Artifacts().Model.Features(),
		Nodes:        []ml.TreeNode{{FeatureIdx: -1, ClassLabel: 1, Probability: 1, IsLeaf: true}},
	}

	deadline := time.Now().Add(5 * time.Second)
	for svc.Artifacts().Model.Type() != ml.DecisionTreeType {
		if time.Now().After(deadline) {
			t.Fatal("model was not reloaded")
		}
		// keep rewriting in case the watcher was not registered yet
		if err := tree.Save(source.ModelPath); err != nil {
			t.Fatal(err)
		}
		time.Sleep(300 * time.Millisecond)
	}
	if publisher.count(monitoring.ModelReload) == 0 {
		t.Fatal("expected a model_reload event")
	}
}
