package storage

import (
	"fmt"
	"net/url"
	"path"
	"regexp"
	"strings"
)

// старые записи хранят полный URL объекта (public или sign), новые - только путь
var objectURLRe = regexp.MustCompile(`/storage/v1/object/(?:public|sign)/([^/]+)/(.+)$`)

// ObjectPath приводит сохраненную ссылку на фото к ключу внутри бакета.
// Поддерживает полный URL, "<bucket>/<key>" и голый ключ. Query-строка отбрасывается.
func ObjectPath(bucket, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		ref = u.Path
	} else if i := strings.IndexByte(ref, '?'); i >= 0 {
		ref = ref[:i]
	}

	if m := objectURLRe.FindStringSubmatch(ref); m != nil && (bucket == "" || m[1] == bucket) {
		ref = m[2]
	}

	ref = strings.TrimPrefix(ref, "/")
	if bucket != "" {
		ref = strings.TrimPrefix(ref, bucket+"/")
	}
	return ref
}

// PackagePhotoKey - ключ фото посылки: <condominium>/<file>
func PackagePhotoKey(condominiumID, fileName string) string {
	return path.Join(condominiumID, path.Base(fileName))
}

// PublicPhotoKey - ключ публичной (размытой или закрашенной) версии
func PublicPhotoKey(condominiumID, fileName string) string {
	return fmt.Sprintf("%s/public/%s", condominiumID, path.Base(fileName))
}
