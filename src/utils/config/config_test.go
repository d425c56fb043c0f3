package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ConfigTestSuite struct {
	suite.Suite
}

func TestConfigTestSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}

func (s *ConfigTestSuite) TestDefaults() {
	config := Default()
	require.NotNil(s.T(), config)

	require.Equal(s.T(), ":7777", config.RESTListenAddress)
	require.Equal(s.T(), 30*time.Second, config.StopTimeout)

	require.EqualValues(s.T(), 5432, config.Database.Port)
	require.Equal(s.T(), "zmart", config.Database.Name)

	require.EqualValues(s.T(), 7000, config.Aggregator.ProposalThresholdBps)
	require.EqualValues(s.T(), 6000, config.Aggregator.DisputeThresholdBps)
	require.Equal(s.T(), 48*time.Hour, config.Aggregator.DisputeWindow)

	require.Equal(s.T(), 10, config.Finalizer.BatchSize)
	require.Equal(s.T(), 5*time.Minute, config.Finalizer.SafetyBuffer)
	require.Equal(s.T(), 45*time.Second, config.Finalizer.MarketTimeout)

	require.Equal(s.T(), 10, config.Syncer.IngesterNumWorkers)
	require.Equal(s.T(), 500, config.Syncer.StoreBatchSize)
}

func (s *ConfigTestSuite) TestMissingFileFails() {
	_, err := Load("does-not-exist.json")
	require.Error(s.T(), err)
}
