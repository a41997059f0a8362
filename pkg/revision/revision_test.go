package revision

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestMintUnique(t *testing.T) {
	seen := make(map[Tag]bool)
	for i := 0; i < 1000; i++ {
		tag := Mint()
		if tag.IsZero() {
			t.Fatalf("Mint %d: got zero tag", i)
		}
		if seen[tag] {
			t.Fatalf("Mint %d: duplicate tag %s", i, tag)
		}
		seen[tag] = true
	}
}

func TestMintConcurrent(t *testing.T) {
	const workers, perWorker = 8, 200
	var mu sync.Mutex
	seen := make(map[Tag]bool)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]Tag, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				local = append(local, Mint())
			}
			mu.Lock()
			defer mu.Unlock()
			for _, tag := range local {
				seen[tag] = true
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, len(seen), workers*perWorker)
}

func TestParseRoundTrip(t *testing.T) {
	tag := Mint()
	parsed, err := Parse(tag.String())
	if err != nil {
		t.Fatalf("Parse(%q): %v", tag.String(), err)
	}
	assert.Equal(t, parsed, tag)
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse("not-a-tag"); err == nil {
		t.Fatal("expected error for malformed tag")
	}
}

func TestMustParse(t *testing.T) {
	tag := Mint()
	assert.Equal(t, MustParse(tag.String()), tag)

	defer func() {
		if recover() == nil {
			t.Fatal("MustParse should panic on a malformed tag")
		}
	}()
	MustParse("not-a-tag")
}

func TestZeroTag(t *testing.T) {
	var tag Tag
	if !tag.IsZero() {
		t.Fatal("zero value should be IsZero")
	}
	assert.Equal(t, tag.String(), "")
	assert.Equal(t, tag.Short(), "")
}

func TestFromBytes(t *testing.T) {
	tag := Mint()
	got, err := FromBytes(tag.Bytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	assert.Equal(t, got, tag)

	if _, err := FromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatal("expected error for short slice")
	}
}

func TestTextMarshalling(t *testing.T) {
	type wrapper struct {
		Rev  Tag `json:"rev"`
		None Tag `json:"none"`
	}
	in := wrapper{Rev: Mint()}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out wrapper
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal(%s): %v", data, err)
	}
	assert.Equal(t, out, in)
}

func TestSequenceDeterministic(t *testing.T) {
	a, b := Sequence(), Sequence()
	for i := 0; i < 5; i++ {
		ta, tb := a(), b()
		if ta != tb {
			t.Fatalf("step %d: sequences diverged: %x vs %x", i, ta, tb)
		}
		if ta.IsZero() {
			t.Fatalf("step %d: sequence produced zero tag", i)
		}
	}
	if a() == a() {
		t.Fatal("consecutive sequence tags must differ")
	}
}
