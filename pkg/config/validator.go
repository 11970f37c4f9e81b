package config

import (
	"fmt"
)

// Validate 校验配置合法性
func Validate(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("配置不能为空")
	}
	c := cfg.JobExecutor

	// 校验General
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[c.General.LogLevel] {
		return fmt.Errorf("general.log_level必须是debug/info/warn/error之一")
	}
	if c.General.LogFormat != "text" && c.General.LogFormat != "json" {
		return fmt.Errorf("general.log_format必须是text/json之一")
	}

	// 校验Task
	if c.Task.FailRate < 0 || c.Task.FailRate > 1 {
		return fmt.Errorf("task.fail_rate必须在0到1之间")
	}

	// 校验Server
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port必须在1到65535之间")
	}

	// 校验Schedules
	names := make(map[string]bool)
	for i, s := range c.Schedules {
		if s.Name == "" {
			return fmt.Errorf("schedules[%d].name不能为空", i)
		}
		if names[s.Name] {
			return fmt.Errorf("schedules中存在重复的name: %s", s.Name)
		}
		names[s.Name] = true

		if s.Cron == "" {
			return fmt.Errorf("schedules[%d].cron不能为空", i)
		}
		if s.Count < 0 {
			return fmt.Errorf("schedules[%d].count不能为负数", i)
		}
	}

	return nil
}
