package logger

import "sync"

// components caches the logger handed out for each component name. Init
// clears it so cached loggers follow the new global configuration.
var components = struct {
	sync.Mutex
	byName map[string]*Logger
}{byName: map[string]*Logger{}}

// Register overrides the logger returned for a component, for example to
// send one component's output to a separate writer.
func Register(name string, l *Logger) {
	components.Lock()
	components.byName[name] = l
	components.Unlock()
}

// Get returns the logger for a component, creating a tagged child of the
// global logger on first use.
func Get(name string) *Logger {
	components.Lock()
	defer components.Unlock()
	if l, ok := components.byName[name]; ok {
		return l
	}
	l := GetGlobalLogger().WithComponent(name)
	components.byName[name] = l
	return l
}

func resetComponents() {
	components.Lock()
	components.byName = map[string]*Logger{}
	components.Unlock()
}
