package config

import (
	"time"
)

// Config 执行器服务配置（对外导出）
type Config struct {
	JobExecutor struct {
		General struct {
			InstanceName string `yaml:"instance_name"`
			LogLevel     string `yaml:"log_level"`
			LogFormat    string `yaml:"log_format"`
		} `yaml:"general"`
		Task struct {
			Delay    time.Duration `yaml:"delay"`
			FailRate float64       `yaml:"fail_rate"`
		} `yaml:"task"`
		Server struct {
			Host            string        `yaml:"host"`
			Port            int           `yaml:"port"`
			ReadTimeout     time.Duration `yaml:"read_timeout"`
			WriteTimeout    time.Duration `yaml:"write_timeout"`
			ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		} `yaml:"server"`
		Events struct {
			Enabled bool `yaml:"enabled"`
		} `yaml:"events"`
		Schedules []ScheduleConfig `yaml:"schedules"`
	} `yaml:"job-executor"`
}

// ScheduleConfig 定时批次配置
type ScheduleConfig struct {
	Name  string `yaml:"name"`
	Cron  string `yaml:"cron"`
	Count int    `yaml:"count"`
}

// Default 返回带默认值的配置
func Default() *Config {
	cfg := &Config{}
	cfg.JobExecutor.Events.Enabled = true
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults 为零值字段填充默认值
func (c *Config) ApplyDefaults() {
	// General默认值
	if c.JobExecutor.General.InstanceName == "" {
		c.JobExecutor.General.InstanceName = "job-executor"
	}
	if c.JobExecutor.General.LogLevel == "" {
		c.JobExecutor.General.LogLevel = "info"
	}
	if c.JobExecutor.General.LogFormat == "" {
		c.JobExecutor.General.LogFormat = "text"
	}

	// Task默认值
	if c.JobExecutor.Task.Delay <= 0 {
		c.JobExecutor.Task.Delay = 1 * time.Second
	}

	// Server默认值
	if c.JobExecutor.Server.Host == "" {
		c.JobExecutor.Server.Host = "0.0.0.0"
	}
	if c.JobExecutor.Server.Port == 0 {
		c.JobExecutor.Server.Port = 8080
	}
	if c.JobExecutor.Server.ReadTimeout <= 0 {
		c.JobExecutor.Server.ReadTimeout = 30 * time.Second
	}
	// wait类接口会阻塞到Job结束，写超时要留足
	if c.JobExecutor.Server.WriteTimeout <= 0 {
		c.JobExecutor.Server.WriteTimeout = 5 * time.Minute
	}
	if c.JobExecutor.Server.ShutdownTimeout <= 0 {
		c.JobExecutor.Server.ShutdownTimeout = 30 * time.Second
	}
}

// GetLogLevel 获取日志级别
func (c *Config) GetLogLevel() string {
	return c.JobExecutor.General.LogLevel
}

// GetTaskDelay 获取内置任务的执行时长
func (c *Config) GetTaskDelay() time.Duration {
	return c.JobExecutor.Task.Delay
}
