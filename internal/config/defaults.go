package config

import "strings"

const (
	defaultAppEnv        = "dev"
	defaultAppLogLevel   = "info"
	defaultAppHTTPAddr   = ":8501"
	defaultLogMaxSizeMB  = 50
	defaultLogMaxBackups = 5
	defaultBotPython     = "python"
	DefaultSentinel      = "Running bot from command line"
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Bot.applyDefaults(keys)
	c.Output.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
		fieldDefault{
			key:   "app.log_max_size_mb",
			need:  func() bool { return a.LogMaxSizeMB <= 0 },
			apply: func() { a.LogMaxSizeMB = defaultLogMaxSizeMB },
		},
		fieldDefault{
			key:   "app.log_max_backups",
			need:  func() bool { return a.LogMaxBackups <= 0 },
			apply: func() { a.LogMaxBackups = defaultLogMaxBackups },
		},
	)
}

func (b *BotConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	// script_path and requirements_path stay empty when unset: the features
	// they drive are disabled instead of guessed.
	applyFieldDefaults(keys,
		stringFieldDefault("bot.python", &b.Python, defaultBotPython),
		stringFieldDefault("bot.sentinel", &b.Sentinel, DefaultSentinel),
	)
	b.Python = strings.TrimSpace(b.Python)
	b.ScriptPath = strings.TrimSpace(b.ScriptPath)
	b.RequirementsPath = strings.TrimSpace(b.RequirementsPath)
	b.BrokersPath = strings.TrimSpace(b.BrokersPath)
	if b.TimeoutSeconds < 0 {
		b.TimeoutSeconds = 0
	}
}

// output.path has no default: leaving it unset disables the output log.
func (o *OutputConfig) applyDefaults(_ keySet) {
	if o == nil {
		return
	}
	o.Path = strings.TrimSpace(o.Path)
	o.Driver = o.ResolvedDriver()
}

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
