package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

// IdxToolConfig is the YAML configuration for cmd/idxtool, adapted from the
// teacher's NovaSqlConfig (server/storage sections) down to what an index
// CLI actually needs: where index and heap files live, and the buffer
// pool's frame budget.
type IdxToolConfig struct {
	Index struct {
		Dir                string `mapstructure:"dir"`
		BufferPoolCapacity int    `mapstructure:"buffer_pool_capacity"`
	} `mapstructure:"index"`
	Heap struct {
		RecordWidth    int `mapstructure:"record_width"`
		AttrByteOffset int `mapstructure:"attr_byte_offset"`
	} `mapstructure:"heap"`
}

// LoadConfig reads path as YAML and fills in the teacher's own defaults
// pattern: unset fields keep a usable zero/default rather than failing.
func LoadConfig(path string) (*IdxToolConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("index.buffer_pool_capacity", 64)
	v.SetDefault("heap.record_width", 16)
	v.SetDefault("heap.attr_byte_offset", 0)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg IdxToolConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
