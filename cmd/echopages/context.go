package main

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"echopages/internal/config"
	"echopages/internal/feed"
	"echopages/internal/logging"
	"echopages/internal/services/supabase"
	"echopages/internal/session"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	logOnce sync.Once
	logger  *slog.Logger
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.logOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		c.logger = logger
	})
	return c.logger
}

func (c *commandContext) sessionStore() (*supabase.SessionStore, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return supabase.NewSessionStore(cfg.Paths.StateDir), nil
}

func (c *commandContext) backendClient() (*supabase.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	sessions, err := c.sessionStore()
	if err != nil {
		return nil, err
	}
	return supabase.New(cfg, sessions, c.ensureLogger())
}

func (c *commandContext) sessionResolver() (*session.Resolver, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	sessions, err := c.sessionStore()
	if err != nil {
		return nil, err
	}
	return session.NewResolver(cfg, sessions), nil
}

func (c *commandContext) newSynchronizer() (*feed.Synchronizer, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	backend, err := c.backendClient()
	if err != nil {
		return nil, err
	}
	return feed.New(backend, cfg.Supabase.CuratedTable, cfg.Supabase.CommunityTable, c.ensureLogger()), nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
