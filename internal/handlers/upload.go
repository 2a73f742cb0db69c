package handlers

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/huangang/venturelink/internal/services"
)

func readUpload(fh *multipart.FileHeader) (services.UploadedFile, error) {
	f, err := fh.Open()
	if err != nil {
		return services.UploadedFile{}, fmt.Errorf("open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return services.UploadedFile{}, fmt.Errorf("read %s: %w", fh.Filename, err)
	}
	return services.UploadedFile{
		Name:        fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}, nil
}

func readUploads(form *multipart.Form, field string) ([]services.UploadedFile, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	files := make([]services.UploadedFile, 0, len(headers))
	for _, fh := range headers {
		f, err := readUpload(fh)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, nil
}
