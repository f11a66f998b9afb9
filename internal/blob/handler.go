package blob

import (
	"io"
	"net/http"
	"os"
	"path"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const sniffLen = 3072

// Handler serves stored files. The request path is the key, so mount it
// with http.StripPrefix.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}

		key, err := cleanKey(r.URL.Path)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		info, err := s.fs.Stat(key)
		if err != nil || info.IsDir() {
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				s.logger.Debug("failed to stat upload", zap.String("key", key), zap.Error(err))
			}
			http.NotFound(w, r)
			return
		}

		f, err := s.Open(key)
		if err != nil {
			http.NotFound(w, r)
			return
		}
		defer func() { _ = f.Close() }()

		header := make([]byte, sniffLen)
		n, _ := io.ReadFull(f, header)
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			http.Error(w, "failed to read upload", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", Detect(header[:n]))
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
		http.ServeContent(w, r, path.Base(key), info.ModTime(), f)
	})
}
