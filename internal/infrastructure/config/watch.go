package config

import (
	"github.com/fsnotify/fsnotify"
)

// Watch re-reads the configuration whenever the config file is written and
// hands the result to onChange. Invalid configurations are reported through
// err and should leave the running settings untouched.
//
// Watch does nothing when no config file was loaded.
func (l *Loader) Watch(onChange func(cfg *Config, err error)) bool {
	if l.v.ConfigFileUsed() == "" {
		return false
	}

	l.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		onChange(l.decode())
	})
	l.v.WatchConfig()
	return true
}
