package infrastructure

import "github.com/DRSN-tech/storefront/pkg/e"

var imageExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
	"image/webp": "webp",
	"image/gif":  "gif",
}

// GetExtensionFromMIME возвращает расширение объекта в бакете по MIME-типу изображения товара.
func GetExtensionFromMIME(mime string) (string, error) {
	ext, ok := imageExtensions[mime]
	if !ok {
		return "bin", e.ErrUnsupportedMediaType
	}

	return ext, nil
}

// IsSupportedImage сообщает, можно ли сохранить файл с таким MIME-типом как изображение товара.
func IsSupportedImage(mime string) bool {
	_, ok := imageExtensions[mime]
	return ok
}
