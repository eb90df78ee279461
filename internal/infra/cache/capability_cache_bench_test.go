package cache

import (
	"fmt"
	"testing"
	"time"

	"authz-service/pkg/rbac"
)

func filledCache(n int) *CapabilityCache {
	c := NewCapabilityCache(10 * time.Minute)
	for i := 0; i < n; i++ {
		c.Set(fmt.Sprintf("fp-%d|manager", i), rbac.Capabilities{ManageFleet: i%2 == 0})
	}
	return c
}

// BenchmarkCapabilityCacheGet measures read performance
func BenchmarkCapabilityCacheGet(b *testing.B) {
	c := filledCache(1000)
	keys := make([]string, 1000)
	for i := range keys {
		keys[i] = fmt.Sprintf("fp-%d|manager", i)
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		c.Get(keys[i%len(keys)])
	}
}

// BenchmarkCapabilityCacheGetParallel measures concurrent read performance (contention)
func BenchmarkCapabilityCacheGetParallel(b *testing.B) {
	c := filledCache(1000)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			c.Get(fmt.Sprintf("fp-%d|manager", i%1000))
			i++
		}
	})
}

// BenchmarkCapabilityCacheMixed is mostly reads with an occasional table swap.
func BenchmarkCapabilityCacheMixed(b *testing.B) {
	c := filledCache(500)

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			key := fmt.Sprintf("fp-%d|manager", i%500)
			switch {
			case i%1000 == 0:
				c.Clear()
			case i%10 == 0:
				c.Set(key, rbac.Capabilities{})
			default:
				c.Get(key)
			}
			i++
		}
	})
}
