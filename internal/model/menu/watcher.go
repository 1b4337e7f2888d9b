package menu

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultReloadDebounce = 300 * time.Millisecond

// Watcher 监听菜单文件，文件变化时重新加载到 MemoryStore
type Watcher struct {
	path     string
	store    *MemoryStore
	watcher  *fsnotify.Watcher
	debounce time.Duration
	onReload func(Catalog)
}

// NewWatcher 监听文件所在目录，以便捕获编辑器先重命名再替换的保存方式
func NewWatcher(path string, store *MemoryStore) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create catalog watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return &Watcher{
		path:     abs,
		store:    store,
		watcher:  fsw,
		debounce: defaultReloadDebounce,
	}, nil
}

// OnReload 注册重新加载成功后的回调
func (w *Watcher) OnReload(fn func(Catalog)) {
	w.onReload = fn
}

// Run 阻塞直到 ctx 取消，然后关闭底层 watcher
func (w *Watcher) Run(ctx context.Context) {
	defer w.watcher.Close()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[menu] watcher error: %v", err)

		case <-timer.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	catalog, err := LoadFile(w.path)
	if err != nil {
		// 保留旧菜单，等待下一次保存
		log.Printf("[menu] reload %s failed: %v", w.path, err)
		return
	}
	w.store.Replace(catalog)
	log.Printf("[menu] reloaded %d items from %s", len(catalog.Menu), w.path)
	if w.onReload != nil {
		w.onReload(catalog)
	}
}
