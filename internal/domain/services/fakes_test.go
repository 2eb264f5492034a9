package services

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/chalktalk/studio/internal/domain/entities"
	"github.com/chalktalk/studio/internal/domain/ports"
)

// fakeDeckRepo is an in-memory deck repository.
type fakeDeckRepo struct {
	mu    sync.Mutex
	decks map[string]entities.Deck
	fail  error
}

func newFakeDeckRepo(decks ...*entities.Deck) *fakeDeckRepo {
	r := &fakeDeckRepo{decks: make(map[string]entities.Deck)}
	for _, d := range decks {
		r.decks[d.ProjectID] = *d
	}
	return r
}

func (r *fakeDeckRepo) Save(ctx context.Context, deck *entities.Deck) error {
	if r.fail != nil {
		return r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.decks[deck.ProjectID] = *deck
	return nil
}

func (r *fakeDeckRepo) Get(ctx context.Context, projectID string) (*entities.Deck, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	deck, ok := r.decks[projectID]
	if !ok {
		return nil, entities.ErrDeckNotFound
	}
	out := deck
	return &out, nil
}

func (r *fakeDeckRepo) ListByOwner(ctx context.Context, ownerID string) ([]*entities.Deck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Deck
	for _, deck := range r.decks {
		if deck.OwnerID == ownerID {
			d := deck
			out = append(out, &d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *fakeDeckRepo) Delete(ctx context.Context, projectID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.decks[projectID]; !ok {
		return entities.ErrDeckNotFound
	}
	delete(r.decks, projectID)
	return nil
}

var _ ports.DeckRepository = (*fakeDeckRepo)(nil)

// fakeCacheRepo is an in-memory audio cache repository.
type fakeCacheRepo struct {
	mu     sync.Mutex
	caches map[string]entities.AudioCache
	fail   error
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{caches: make(map[string]entities.AudioCache)}
}

func (r *fakeCacheRepo) refs(projectID string) []string {
	var refs []string
	for _, entries := range r.caches[projectID] {
		for _, entry := range entries {
			refs = append(refs, entry.AudioFileRef)
		}
	}
	return refs
}

func (r *fakeCacheRepo) Replace(ctx context.Context, projectID string, cache entities.AudioCache) ([]string, error) {
	if r.fail != nil {
		return nil, r.fail
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.refs(projectID)
	r.caches[projectID] = cache
	return old, nil
}

func (r *fakeCacheRepo) Get(ctx context.Context, projectID string) (entities.AudioCache, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cache, ok := r.caches[projectID]
	if !ok {
		return entities.AudioCache{}, nil
	}
	return cache, nil
}

func (r *fakeCacheRepo) Clear(ctx context.Context, projectID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	old := r.refs(projectID)
	delete(r.caches, projectID)
	return old, nil
}

var _ ports.AudioCacheRepository = (*fakeCacheRepo)(nil)

// fakeBlobStore records puts and deletes in memory.
type fakeBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	deleted []string
	fail    error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(ctx context.Context, name string, data []byte) (string, error) {
	if s.fail != nil {
		return "", s.fail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = data
	return name, nil
}

func (s *fakeBlobStore) Get(ctx context.Context, ref string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.blobs[ref]
	if !ok {
		return nil, fmt.Errorf("blob %s not found", ref)
	}
	return data, nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, ref string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, ref)
	s.deleted = append(s.deleted, ref)
	return nil
}

func (s *fakeBlobStore) URL(ref string) string {
	return "/audio/" + ref
}

var _ ports.BlobStore = (*fakeBlobStore)(nil)

// fakeSynth returns canned audio per text, or an error.
type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	fail  map[string]error
}

func newFakeSynth() *fakeSynth {
	return &fakeSynth{fail: make(map[string]error)}
}

func (s *fakeSynth) Synthesize(ctx context.Context, text string) ([]byte, error) {
	s.mu.Lock()
	s.calls = append(s.calls, text)
	s.mu.Unlock()
	if err := s.fail[text]; err != nil {
		return nil, err
	}
	return []byte("mp3:" + text), nil
}

var _ ports.SpeechSynthesizer = (*fakeSynth)(nil)

// fakeProber returns a fixed duration, or an error.
type fakeProber struct {
	duration int
	err      error
}

func (p *fakeProber) DurationMS(audio []byte) (int, error) {
	if p.err != nil {
		return 0, p.err
	}
	return p.duration, nil
}

var _ ports.DurationProber = (*fakeProber)(nil)

// fakeExtractor yields fragments keyed by slide index.
type fakeExtractor struct {
	fragments map[int][]entities.Fragment
}

func (e *fakeExtractor) Extract(slideHTML string, slideIndex int) ([]entities.Fragment, error) {
	return e.fragments[slideIndex], nil
}

var _ ports.FragmentExtractor = (*fakeExtractor)(nil)

// fakeEngine records mutations for executor tests.
type fakeEngine struct {
	adds     int
	replaces int
	deletes  int
	failAll  bool
	doc      entities.DocumentModel
}

func (e *fakeEngine) AddSlide(name, content string, insertAt *int) bool {
	if e.failAll {
		return false
	}
	e.adds++
	e.doc.InsertPage(entities.Page{Name: name, Component: entities.NewHTMLContent(content)}, insertAt)
	return true
}

func (e *fakeEngine) ReplaceSlide(index int, content, name string) bool {
	if e.failAll || index < 0 || index >= len(e.doc.Pages) {
		return false
	}
	e.replaces++
	e.doc.Pages[index].Component = entities.NewHTMLContent(content)
	if name != "" {
		e.doc.Pages[index].Name = name
	}
	return true
}

func (e *fakeEngine) DeleteSlide(index int) bool {
	if e.failAll || e.doc.RemovePage(index) != nil {
		return false
	}
	e.deletes++
	return true
}

func (e *fakeEngine) SelectSlide(index int) bool { return index >= 0 && index < len(e.doc.Pages) }
func (e *fakeEngine) SelectedIndex() int         { return 0 }
func (e *fakeEngine) SlideHTML(index int) (string, bool) {
	if index < 0 || index >= len(e.doc.Pages) {
		return "", false
	}
	return e.doc.Pages[index].Component.ToHTML(), true
}
func (e *fakeEngine) SlideCSS(index int) (string, bool) { return "", index < len(e.doc.Pages) }
func (e *fakeEngine) Slide(index int) (ports.EditorSlide, bool) {
	html, ok := e.SlideHTML(index)
	return ports.EditorSlide{Index: index, HTML: html}, ok
}
func (e *fakeEngine) AllSlides() []ports.EditorSlide {
	out := make([]ports.EditorSlide, 0, len(e.doc.Pages))
	for i := range e.doc.Pages {
		out = append(out, ports.EditorSlide{
			Index: i,
			Name:  e.doc.Pages[i].Name,
			HTML:  e.doc.Pages[i].Component.ToHTML(),
		})
	}
	return out
}
func (e *fakeEngine) SlideCount() int                             { return len(e.doc.Pages) }
func (e *fakeEngine) Zoom() float64                               { return 100 }
func (e *fakeEngine) SetZoom(zoom float64)                        {}
func (e *fakeEngine) Undo() bool                                  { return false }
func (e *fakeEngine) Redo() bool                                  { return false }
func (e *fakeEngine) Document() *entities.DocumentModel           { d := e.doc; return &d }
func (e *fakeEngine) LoadDocument(doc *entities.DocumentModel)    { e.doc = *doc }

var _ ports.EditorEngine = (*fakeEngine)(nil)

// fakeSync records broadcast events.
type fakeSync struct {
	mu     sync.Mutex
	events []ports.SessionEvent
}

func (s *fakeSync) Subscribe(clientID string) <-chan ports.SessionEvent {
	ch := make(chan ports.SessionEvent)
	close(ch)
	return ch
}

func (s *fakeSync) Unsubscribe(clientID string) {}

func (s *fakeSync) Broadcast(event ports.SessionEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *fakeSync) Stop() {}

func (s *fakeSync) eventTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e.Type)
	}
	return out
}

var _ ports.SessionSync = (*fakeSync)(nil)
