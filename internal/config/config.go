package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"sandpixel-be/internal/service/game"

	"github.com/spf13/viper"
)

type AppConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	// 为空时使用内置词库
	WordListPath string `mapstructure:"word_list_path"`

	RoomInactivityMinutes  int `mapstructure:"room_inactivity_minutes"`
	CleanupIntervalSeconds int `mapstructure:"cleanup_interval_seconds"`

	// 每个 WebSocket 连接的入站限流
	InboundRatePerSecond float64 `mapstructure:"inbound_rate_per_second"`
	InboundBurst         int     `mapstructure:"inbound_burst"`

	Timings game.Timings `mapstructure:"timings"`
}

func (c *AppConfig) RoomInactivity() time.Duration {
	return time.Duration(c.RoomInactivityMinutes) * time.Minute
}

func (c *AppConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSeconds) * time.Second
}

func InitConfig() *AppConfig {
	config, err := LoadConfig(".")
	if err != nil {
		panic(err)
	}

	return config
}

// LoadConfig 从 dir 下的 app_config.json 读取配置，文件不存在时全部使用默认值，
// 环境变量 SANDPIXEL_* 优先于文件
func LoadConfig(dir string) (*AppConfig, error) {
	v := viper.New()

	v.SetConfigName("app_config")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("SANDPIXEL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("加载配置失败: %w", err)
		}
	}

	var config AppConfig

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("log_level", "info")
	v.SetDefault("word_list_path", "")
	v.SetDefault("room_inactivity_minutes", 30)
	v.SetDefault("cleanup_interval_seconds", 60)
	v.SetDefault("inbound_rate_per_second", 20)
	v.SetDefault("inbound_burst", 40)

	t := game.DefaultTimings()
	v.SetDefault("timings.countdown", t.Countdown)
	v.SetDefault("timings.word_selection", t.WordSelection)
	v.SetDefault("timings.early_end_grace", t.EarlyEndGrace)
	v.SetDefault("timings.results", t.Results)
	v.SetDefault("timings.game_over", t.GameOver)
	v.SetDefault("timings.voting", t.Voting)
	v.SetDefault("timings.voting_reset", t.VotingReset)
	v.SetDefault("timings.telephone_draw", t.TelephoneDraw)
	v.SetDefault("timings.telephone_guess", t.TelephoneGuess)
	v.SetDefault("timings.telephone_reveal_base", t.TelephoneRevealBase)
	v.SetDefault("timings.telephone_reveal_per_entry", t.TelephoneRevealPerEntry)
}
