package cron

import (
	"Opportune/internal/api/config"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegisterJobs(t *testing.T) {
	mgr := NewCronManager(config.CronConfig{
		ClusterSpec: "0 */30 * * * *",
		CleanupSpec: "@daily",
	}, nil, nil, nil)
	assert.NoError(t, mgr.RegisterJobs())
	assert.Len(t, mgr.engine.Entries(), 2)
}

func TestRegisterJobs_InvalidSpec(t *testing.T) {
	mgr := NewCronManager(config.CronConfig{ClusterSpec: "every now and then"}, nil, nil, nil)
	assert.Error(t, mgr.RegisterJobs())
}
