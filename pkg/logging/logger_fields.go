package logging

import (
	"time"
)

// Common field constructors
func String(key, value string) Field {
	return Field{Key: key, Value: value}
}

func Int(key string, value int) Field {
	return Field{Key: key, Value: value}
}

func Uint64(key string, value uint64) Field {
	return Field{Key: key, Value: value}
}

func Float64(key string, value float64) Field {
	return Field{Key: key, Value: value}
}

func Bool(key string, value bool) Field {
	return Field{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Field {
	return Field{Key: key, Value: value.String()}
}

func Error(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: nil}
	}
	return Field{Key: "error", Value: err.Error()}
}

func Any(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// Component names the emitting engine ("doper", "diffuser", "ensemble", ...)
func Component(name string) Field {
	return String("component", name)
}

func Site(id int) Field {
	return Int("site", id)
}

func Kind(kind string) Field {
	return String("kind", kind)
}

// Pair logs an anion/cation pair as two fields.
func Pair(anion, cation int) []Field {
	return []Field{Int("anion", anion), Int("cation", cation)}
}

func PathLen(n int) Field {
	return Int("path_len", n)
}

func Attempt(n int) Field {
	return Int("attempt", n)
}

func Seed(seed uint64) Field {
	return Uint64("seed", seed)
}

func RunID(id string) Field {
	return String("run_id", id)
}

func Replica(n int) Field {
	return Int("replica", n)
}

func Latency(d time.Duration) Field {
	return Duration("latency", d)
}

func Count(n int) Field {
	return Int("count", n)
}

func Path(p string) Field {
	return String("path", p)
}
