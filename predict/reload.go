package predict

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"churnpredict/ml"
	"churnpredict/monitoring"
)

const reloadDebounce = 250 * time.Millisecond

// Reload loads the artifacts from the configured source and swaps them in
// with an empty result cache. On failure the current snapshot stays in use.
func (s *Service) Reload(ctx context.Context) error {
	if s.source.ModelPath == "" || s.source.EncoderPath == "" {
		return errors.New("artifact source not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	artifacts, err := ml.LoadArtifacts(s.source.ModelType, s.source.ModelPath, s.source.EncoderPath)
	if err != nil {
		if s.metrics != nil {
			s.metrics.ObserveReload("failed")
		}
		s.logger.Error("artifact reload failed, keeping current model", zap.Error(err))
		return err
	}

	snap, err := s.newSnapshot(artifacts)
	if err != nil {
		return err
	}
	// the old snapshot's cache goes with it; predictions still running
	// against it cannot reach the new one
	s.current.Store(snap)
	if s.metrics != nil {
		s.metrics.ObserveReload("ok")
	}
	if s.publisher != nil {
		s.publisher.Publish(monitoring.ModelReload, map[string]interface{}{
			"model_type": artifacts.Model.Type(),
			"features":   artifacts.Model.Features(),
		})
	}
	s.logger.Info("artifacts reloaded",
		zap.String("model_type", artifacts.Model.Type()),
		zap.String("model_path", s.source.ModelPath),
		zap.String("encoder_path", s.source.EncoderPath))
	return nil
}

// Watch reloads the artifacts whenever either file is written or replaced,
// until ctx is cancelled.
func (s *Service) Watch(ctx context.Context) error {
	if s.source.ModelPath == "" || s.source.EncoderPath == "" {
		return errors.New("artifact source not configured")
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	targets := map[string]bool{
		filepath.Clean(s.source.ModelPath):   true,
		filepath.Clean(s.source.EncoderPath): true,
	}
	// watch directories so files replaced by rename are still seen
	dirs := map[string]bool{}
	for path := range targets {
		dirs[filepath.Dir(path)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return err
		}
	}
	s.logger.Info("watching artifacts", zap.String("model_path", s.source.ModelPath), zap.String("encoder_path", s.source.EncoderPath))

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !targets[filepath.Clean(event.Name)] || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_ = s.Reload(ctx)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("artifact watcher error", zap.Error(err))
		}
	}
}
