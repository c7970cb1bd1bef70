package usecase

import "github.com/DRSN-tech/storefront/internal/domain"

// CATALOG USECASE

// AddLocalProductReq — запрос на добавление локального товара.
type AddLocalProductReq struct {
	Draft domain.ProductDraft
	Image *ProductImage // необязательное изображение, загружается в S3
}

// ProductImage представляет изображение, загруженное через multipart/form-data.
type ProductImage struct {
	Data     []byte // байты изображения
	MimeType string // Content-Type из multipart (image/jpeg)
	Size     int64  // фактический размер в байтах
	Name     string // оригинальное имя файла (для логов)
}

// SuggestionResult — результат подсказок для одного поискового запроса.
type SuggestionResult struct {
	Query    string
	Products []domain.Product
	Err      error
}

// INFRASTUCTURE

// UploadImageReq — запрос на загрузку изображения товара.
type UploadImageReq struct {
	Title string
	Image ProductImage
}

// UploadImageRes — результат загрузки: ключ объекта и публичный URL.
type UploadImageRes struct {
	Key string
	URL string
}

type WriteRawMessageReq struct {
	Key     string
	Payload []byte
}

// MAPPERS

func NewAddLocalProductReq(draft domain.ProductDraft, image *ProductImage) *AddLocalProductReq {
	return &AddLocalProductReq{
		Draft: draft,
		Image: image,
	}
}

func NewProductImage(data []byte, mimeType string, size int64, name string) *ProductImage {
	return &ProductImage{
		Data:     data,
		MimeType: mimeType,
		Size:     size,
		Name:     name,
	}
}

func NewUploadImageReq(title string, image ProductImage) *UploadImageReq {
	return &UploadImageReq{
		Title: title,
		Image: image,
	}
}

func NewUploadImageRes(key string, url string) *UploadImageRes {
	return &UploadImageRes{
		Key: key,
		URL: url,
	}
}

func NewWriteRawMessageReq(key string, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		Key:     key,
		Payload: payload,
	}
}
