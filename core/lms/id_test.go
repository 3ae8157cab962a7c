package lms

import (
	"strings"
	"sync"
	"testing"
)

func TestGenerateID(t *testing.T) {
	const n = 1000

	ids := make(chan string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids <- GenerateID()
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]struct{}, n)
	for id := range ids {
		if !strings.HasPrefix(id, "id_") {
			t.Fatalf("GenerateID() = %s; want id_ prefix", id)
		}
		if len(strings.Split(id, "_")) != 3 {
			t.Fatalf("GenerateID() = %s; want id_<counter>_<suffix>", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("GenerateID() returned duplicate %s", id)
		}
		seen[id] = struct{}{}
	}
}
