package config

import (
	"fmt"
	"time"
)

// DomainConfig holds the tunable rules of the editing engine
type DomainConfig struct {
	// Canvas region new nodes are scattered into
	CanvasWidth  float64
	CanvasHeight float64

	// Connection policy
	AllowSelfConnections bool

	// Persistence
	SaveDebounce time.Duration

	// Graph constraints enforced by the store
	MaxNodesPerGraph int
	MaxEdgesPerGraph int
	MaxNameLength    int
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		CanvasWidth:  400,
		CanvasHeight: 400,

		// Self-loops have always been accepted by the editor
		AllowSelfConnections: true,

		SaveDebounce: time.Second,

		MaxNodesPerGraph: 10000,
		MaxEdgesPerGraph: 50000,
		MaxNameLength:    200,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxNodesPerGraph = 5000
	config.MaxEdgesPerGraph = 25000
	return config
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	config := DefaultDomainConfig()
	config.MaxNodesPerGraph = 100000
	config.MaxEdgesPerGraph = 500000
	return config
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}

// Validate checks if the configuration is valid
func (c *DomainConfig) Validate() error {
	if c.CanvasWidth <= 0 || c.CanvasHeight <= 0 {
		return fmt.Errorf("canvas must have a positive size, got %vx%v", c.CanvasWidth, c.CanvasHeight)
	}
	if c.SaveDebounce <= 0 {
		return fmt.Errorf("save debounce must be positive, got %s", c.SaveDebounce)
	}
	if c.MaxNodesPerGraph <= 0 || c.MaxEdgesPerGraph <= 0 {
		return fmt.Errorf("graph limits must be positive")
	}
	return nil
}
