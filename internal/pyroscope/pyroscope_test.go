package pyroscope

import (
	"testing"

	"github.com/flexprice/marketplace/internal/config"
	"github.com/flexprice/marketplace/internal/logger"
	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
)

func TestProfileTypes(t *testing.T) {
	cfg := config.GetDefaultConfig()
	svc := NewPyroscopeService(cfg, logger.NewNoopLogger())

	assert.Len(t, svc.profileTypes(), 4)

	cfg.Pyroscope.ProfileTypes = []string{"CPU", "mutex_count", "bogus"}
	assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileMutexCount}, svc.profileTypes())
}

func TestDisabledStartIsNoop(t *testing.T) {
	svc := NewPyroscopeService(config.GetDefaultConfig(), logger.NewNoopLogger())

	assert.False(t, svc.IsEnabled())
	assert.NoError(t, svc.Start())
	assert.NoError(t, svc.Stop())
}
