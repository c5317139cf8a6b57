package account

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	infralog "github.com/emberwallet/v1/internal/core/infrastructure/log"
)

// slowProvider 延迟返回固定候选的来源桩
type slowProvider struct {
	name       string
	delay      time.Duration
	candidates []*AccountCandidate
	err        error
}

func (p *slowProvider) Name() string { return p.name }
func (p *slowProvider) Search(ctx context.Context, query string) ([]*AccountCandidate, error) {
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if p.err != nil {
		return nil, p.err
	}
	return p.candidates, nil
}

func newTestResolver(t *testing.T, providers ...SearchProvider) *Resolver {
	t.Helper()
	r, err := NewResolver(infralog.NewNop(), providers...)
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestResolver_SearchConcatInRegistrationOrder(t *testing.T) {
	// 先注册的来源先出现在结果中，即使它返回更慢
	first := &slowProvider{
		name:  "first",
		delay: 50 * time.Millisecond,
		candidates: []*AccountCandidate{
			{Address: "0xaaa", Name: "alice", Source: "first"},
		},
	}
	second := &slowProvider{
		name: "second",
		candidates: []*AccountCandidate{
			{Address: "0xbbb", Name: "albert", Source: "second"},
		},
	}

	r := newTestResolver(t, first, second)
	got := r.Search(context.Background(), "al")

	if len(got) != 2 {
		t.Fatalf("Search() returned %d candidates, want 2", len(got))
	}
	if got[0].Source != "first" || got[1].Source != "second" {
		t.Errorf("order = [%s %s], want [first second]", got[0].Source, got[1].Source)
	}
}

func TestResolver_SearchProviderFailureTolerated(t *testing.T) {
	broken := &slowProvider{name: "broken", err: errors.New("backend down")}
	healthy := &slowProvider{
		name: "healthy",
		candidates: []*AccountCandidate{
			{Address: "0xccc", Name: "carol", Source: "healthy"},
		},
	}

	r := newTestResolver(t, broken, healthy)
	got := r.Search(context.Background(), "car")

	if len(got) != 1 || got[0].Name != "carol" {
		t.Errorf("Search() = %v, want carol from healthy provider", got)
	}
}

func TestResolver_SearchEmptyQuery(t *testing.T) {
	r := newTestResolver(t, &slowProvider{name: "p"})
	if got := r.Search(context.Background(), "   "); got != nil {
		t.Errorf("Search(blank) = %v, want nil", got)
	}
}

func TestResolver_ResolveExactMatch(t *testing.T) {
	provider := &slowProvider{
		name: "book",
		candidates: []*AccountCandidate{
			{Address: "0xAbCd00000000000000000000000000000000AbCd", Name: "dora", Source: "book"},
		},
	}
	r := newTestResolver(t, provider)

	tests := []struct {
		name  string
		text  string
		found bool
	}{
		{"by name", "dora", true},
		{"by name case-insensitive", "DORA", true},
		{"by address case-insensitive", "0xabcd00000000000000000000000000000000abcd", true},
		{"partial no match", "dor", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if (got != nil) != tt.found {
				t.Errorf("Resolve(%q) found = %v, want %v", tt.text, got != nil, tt.found)
			}
		})
	}
}

func TestResolver_ResolveMemoized(t *testing.T) {
	provider := &slowProvider{
		name: "book",
		candidates: []*AccountCandidate{
			{Address: "0xeee", Name: "erin", Source: "book"},
		},
	}
	r := newTestResolver(t, provider)

	if got, _ := r.Resolve(context.Background(), "erin"); got == nil {
		t.Fatal("first Resolve() should find erin")
	}

	// 来源下线后仍然命中缓存
	provider.err = errors.New("backend down")
	got, err := r.Resolve(context.Background(), "erin")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if got == nil || got.Name != "erin" {
		t.Errorf("Resolve() = %v, want memoized erin", got)
	}
}

func TestStaticProvider_Search(t *testing.T) {
	p := NewStaticProvider("local", []Entry{
		{Address: "0x1111111111111111111111111111111111111111", Name: "alice"},
		{Address: "0x2222222222222222222222222222222222222222", Name: "bob"},
	})

	got, err := p.Search(context.Background(), "ali")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "alice" {
		t.Errorf("Search(ali) = %v, want alice", got)
	}

	got, _ = p.Search(context.Background(), "0x2222")
	if len(got) != 1 || got[0].Name != "bob" {
		t.Errorf("Search(0x2222) = %v, want bob", got)
	}
}

// fakeRedis 内存版redisClient桩
type fakeRedis struct {
	data map[string][]byte
}

func (f *fakeRedis) Get(ctx context.Context, key string) ([]byte, error) {
	v, ok := f.data[key]
	if !ok {
		return nil, errors.New("not found")
	}
	return v, nil
}
func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, _ time.Duration) error {
	f.data[key] = value.([]byte)
	return nil
}
func (f *fakeRedis) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys := make([]string, 0, len(f.data))
	for k := range f.data {
		keys = append(keys, k)
	}
	return keys, nil
}
func (f *fakeRedis) Ping(ctx context.Context) error { return nil }
func (f *fakeRedis) Close() error                   { return nil }

func TestRedisProvider_PutAndSearch(t *testing.T) {
	p := newRedisProvider(&fakeRedis{data: make(map[string][]byte)}, "")

	entry := &Entry{Address: "0x3333333333333333333333333333333333333333", Name: "carol"}
	if err := p.Put(context.Background(), entry); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	got, err := p.Search(context.Background(), "carol")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Address != entry.Address {
		t.Errorf("Search(carol) = %v, want stored entry", got)
	}
	if got[0].Source != "redis-addressbook" {
		t.Errorf("source = %v, want redis-addressbook", got[0].Source)
	}
}

func TestRedisProvider_SkipsCorruptEntries(t *testing.T) {
	store := &fakeRedis{data: map[string][]byte{
		"ember:addressbook:0xbad": []byte("{not json"),
	}}
	p := newRedisProvider(store, "")

	good, _ := json.Marshal(&Entry{Address: "0x4444444444444444444444444444444444444444", Name: "dave"})
	store.data["ember:addressbook:0x4444444444444444444444444444444444444444"] = good

	got, err := p.Search(context.Background(), "dave")
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(got) != 1 || got[0].Name != "dave" {
		t.Errorf("Search(dave) = %v, want single dave entry", got)
	}
}
