package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"churnpredict/db"
	qhttp "churnpredict/http"
	"churnpredict/logger"
	"churnpredict/ml"
	"churnpredict/monitoring"
	"churnpredict/predict"
)

type Config struct {
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
		MaxBodyBytes   int64         `yaml:"max_body_bytes"`
	} `yaml:"http"`
	Model struct {
		Type        string `yaml:"type"`
		Path        string `yaml:"path"`
		EncoderPath string `yaml:"encoder_path"`
		Watch       bool   `yaml:"watch"`
		CacheSize   int    `yaml:"cache_size"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Log logger.Config `yaml:"log"`
}

func main() {
	// 1. Load config, .env overrides the yaml file
	configPath := findConfig("config.yaml")
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("Failed to load .env: %v", err)
	}
	config, err := loadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	applyEnv(config)

	// 2. Logger
	zlog, err := logger.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("config loaded", zap.String("path", configPath))

	// 3. Prediction history
	store, err := db.Open(config.Database.Path)
	if err != nil {
		zlog.Fatal("failed to open database", zap.String("path", config.Database.Path), zap.Error(err))
	}
	defer store.Close()
	zlog.Info("database initialized", zap.String("path", config.Database.Path))

	// 4. Artifacts are loaded once; the UI is not served without them
	artifacts, err := ml.LoadArtifacts(config.Model.Type, config.Model.Path, config.Model.EncoderPath)
	if err != nil {
		zlog.Fatal("failed to load model artifacts",
			zap.String("model_path", config.Model.Path),
			zap.String("encoder_path", config.Model.EncoderPath),
			zap.Error(err))
	}
	zlog.Info("model artifacts loaded",
		zap.String("model_type", artifacts.Model.Type()),
		zap.Int("features", len(artifacts.Model.Features())))

	metrics := monitoring.NewMetrics()
	hub := monitoring.NewWebSocketHub(zlog, config.Http.AllowedOrigins)
	go hub.Start()
	defer hub.Stop()

	svc, err := predict.New(artifacts,
		predict.WithSource(predict.Source{
			ModelType:   config.Model.Type,
			ModelPath:   config.Model.Path,
			EncoderPath: config.Model.EncoderPath,
		}),
		predict.WithStore(store),
		predict.WithPublisher(hub),
		predict.WithMetrics(metrics),
		predict.WithLogger(zlog),
		predict.WithCacheSize(config.Model.CacheSize),
	)
	if err != nil {
		zlog.Fatal("failed to create prediction service", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if config.Model.Watch {
		go func() {
			if err := svc.Watch(ctx); err != nil {
				zlog.Error("artifact watcher stopped", zap.Error(err))
			}
		}()
	}

	// 5. Start HTTP server
	server := qhttp.NewServer(qhttp.ServerConfig{
		Port:           config.Http.Port,
		Timeout:        config.Http.Timeout,
		MaxBodyBytes:   config.Http.MaxBodyBytes,
		AllowedOrigins: config.Http.AllowedOrigins,
	}, qhttp.Dependencies{
		Service: svc,
		History: store,
		Hub:     hub,
		Metrics: metrics,
		Logger:  zlog,
	})
	go func() {
		if err := server.Start(); err != nil {
			zlog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 6. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutting down")

	if err := server.Stop(); err != nil {
		zlog.Error("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("exiting")
}

// findConfig looks in the working directory first, then its parent.
func findConfig(name string) string {
	if _, err := os.Stat(name); os.IsNotExist(err) {
		return filepath.Join("..", name)
	}
	return name
}

func defaultConfig() *Config {
	config := &Config{}
	serverDefaults := qhttp.DefaultServerConfig()
	config.Http.Port = serverDefaults.Port
	config.Http.Timeout = serverDefaults.Timeout
	config.Http.AllowedOrigins = serverDefaults.AllowedOrigins
	config.Http.MaxBodyBytes = serverDefaults.MaxBodyBytes
	config.Model.Type = ml.LogisticRegressionType
	config.Model.Path = filepath.Join("models", "churn_prediction_model.json")
	config.Model.EncoderPath = filepath.Join("models", "churn_prediction_label_encoder.json")
	config.Model.CacheSize = 1024
	config.Database.Path = "churn.db"
	config.Log.Level = "info"
	config.Log.Encoding = "json"
	return config
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config := defaultConfig()
	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return config, nil
}

// applyEnv applies CHURN_* environment overrides.
func applyEnv(config *Config) {
	if v := os.Getenv("CHURN_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			config.Http.Port = port
		} else {
			log.Printf("Ignoring CHURN_HTTP_PORT=%q: %v", v, err)
		}
	}
	if v := os.Getenv("CHURN_MODEL_PATH"); v != "" {
		config.Model.Path = v
	}
	if v := os.Getenv("CHURN_ENCODER_PATH"); v != "" {
		config.Model.EncoderPath = v
	}
	if v := os.Getenv("CHURN_DB_PATH"); v != "" {
		config.Database.Path = v
	}
	if v := os.Getenv("CHURN_LOG_LEVEL"); v != "" {
		config.Log.Level = v
	}
}
