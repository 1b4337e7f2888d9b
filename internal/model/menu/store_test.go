package menu

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lejockey/concierge/backend/internal/i18n"
)

func TestSeedCatalog(t *testing.T) {
	catalog := Seed()
	if len(catalog.Menu) != 37 {
		t.Fatalf("expected 37 menu items, got %d", len(catalog.Menu))
	}
	if len(catalog.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(catalog.Events))
	}
	if len(catalog.Products) != 3 {
		t.Fatalf("expected 3 products, got %d", len(catalog.Products))
	}

	store := NewMemoryStore(catalog)
	item, ok := store.Resolve("Negroni")
	if !ok {
		t.Fatal("expected Negroni in seed catalog")
	}
	if item.Price != "16,00$" {
		t.Fatalf("unexpected Negroni price %q", item.Price)
	}
}

func TestResolve(t *testing.T) {
	store := NewMemoryStore(Seed())

	cases := []struct {
		query string
		want  string
	}{
		{"negroni", "Negroni"},
		{"Cucumber Gimlet", "Gimlet Concombre"},
		{"  Espresso Martini ", "Espresso Martini"},
		{"old fashion", "Old Fashioned"},
		{"Moscow Mule", "Moscow Mule"},
		{"whisky sour", "Whisky Sour"},
		{"Pisco Sour", "Pisco Sour"},
		{"Depeche Mauve", "Dépêche Mauve"},
		{"Peter's Cup", "Peter’s Cup"},
		{"Tipsy Pear", "Poire Picole"},
	}
	for _, tc := range cases {
		item, ok := store.Resolve(tc.query)
		if !ok {
			t.Fatalf("Resolve(%q) found nothing", tc.query)
		}
		if item.Name != tc.want {
			t.Fatalf("Resolve(%q) = %q, want %q", tc.query, item.Name, tc.want)
		}
	}

	if _, ok := store.Resolve(""); ok {
		t.Fatal("empty query should not resolve")
	}
	if _, ok := store.Resolve("zzzzqqq"); ok {
		t.Fatal("unknown drink should not resolve")
	}
}

func TestResolveRejectsPartialNames(t *testing.T) {
	store := NewMemoryStore(Seed())

	for _, query := range []string{"Gin", "Mai", "Mule", "Sour", "Martini"} {
		if item, ok := store.Resolve(query); ok {
			t.Fatalf("Resolve(%q) should not pick %q", query, item.Name)
		}
	}
}

func TestResolveRejectsTies(t *testing.T) {
	store := NewMemoryStore(Catalog{Menu: []Item{
		{Name: "Rose Lapin", Price: "16,00$"},
		{Name: "Rose Lapon", Price: "16,00$"},
	}})

	if _, ok := store.Resolve("rose lap"); ok {
		t.Fatal("two equally good candidates should not resolve")
	}
	if item, ok := store.Resolve("rose lapin"); !ok || item.Name != "Rose Lapin" {
		t.Fatalf("exact name should still resolve, got %q %v", item.Name, ok)
	}
}

func TestProductLookup(t *testing.T) {
	store := NewMemoryStore(Seed())

	jockeyCap, ok := store.Product("p2")
	if !ok {
		t.Fatal("expected product p2")
	}
	if jockeyCap.EffectivePrice() != "20,00$" {
		t.Fatalf("sale price should win, got %q", jockeyCap.EffectivePrice())
	}
	shirt, _ := store.Product("p1")
	if shirt.EffectivePrice() != "30,00$" {
		t.Fatalf("unexpected price %q", shirt.EffectivePrice())
	}
	if _, ok := store.Product("p9"); ok {
		t.Fatal("unknown product should not resolve")
	}
}

func TestDecodeRejectsDuplicateProducts(t *testing.T) {
	doc := `[[menu]]
name = "Negroni"
price = "16,00$"

[[products]]
id = "p1"
name = "Cap"
price = "25,00$"

[[products]]
id = "p1"
name = "Shirt"
price = "30,00$"
`
	if _, err := Decode(doc); err == nil {
		t.Fatal("expected error for duplicate product ids")
	}
}

func TestDisplayName(t *testing.T) {
	item := Item{Name: "Gimlet Concombre", NameEn: "Cucumber Gimlet"}
	if got := item.DisplayName(i18n.English); got != "Cucumber Gimlet" {
		t.Fatalf("unexpected english name %q", got)
	}
	if got := (Item{Name: "Negroni"}).DisplayName(i18n.English); got != "Negroni" {
		t.Fatalf("expected fallback to french name, got %q", got)
	}
}

func TestCatalogIsCopied(t *testing.T) {
	store := NewMemoryStore(Seed())
	items := store.Items()
	items[0].Name = "mutated"

	if store.Items()[0].Name == "mutated" {
		t.Fatal("Items must return a copy")
	}
}

func TestDecodeRejectsEmptyMenu(t *testing.T) {
	if _, err := Decode(`[[events]]
name = "Jazz"`); err == nil {
		t.Fatal("expected error for catalog without menu")
	}
}

func TestWatcherReloadsCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "menu.toml")
	writeCatalog(t, path, "Negroni")

	catalog, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	store := NewMemoryStore(catalog)

	watcher, err := NewWatcher(path, store)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	watcher.debounce = 20 * time.Millisecond
	reloaded := make(chan Catalog, 4)
	watcher.OnReload(func(c Catalog) { reloaded <- c })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watcher.Run(ctx)

	writeCatalog(t, path, "Boulevardier")

	select {
	case c := <-reloaded:
		if c.Menu[0].Name != "Boulevardier" {
			t.Fatalf("unexpected reloaded item %q", c.Menu[0].Name)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("catalog was not reloaded")
	}

	if _, ok := store.Resolve("Boulevardier"); !ok {
		t.Fatal("store should serve the reloaded catalog")
	}
}

func writeCatalog(t *testing.T, path, name string) {
	t.Helper()
	content := "[[menu]]\nname = \"" + name + "\"\nprice = \"16,00$\"\ncategory = \"Classiques\"\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
}
