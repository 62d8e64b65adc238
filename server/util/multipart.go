package util

import (
	"log"
	"mime/multipart"
	"net/http"
)

type MultipartFile struct {
	Field  string
	File   multipart.File
	Header *multipart.FileHeader
}

type ParsedMultipart struct {
	Files []MultipartFile
}

func (pm *ParsedMultipart) CloseFiles() {
	for _, mf := range pm.Files {
		if mf.File != nil {
			mf.File.Close()
		}
	}
}

func (pm *ParsedMultipart) FileByKey(key string) *MultipartFile {
	for i := range pm.Files {
		if pm.Files[i].Field == key {
			return &pm.Files[i]
		}
	}

	return nil
}

// ParseMultipart parses the request's multipart form. The request body is
// capped at maxRequestSize before parsing; individual files larger than
// maxFileSize are skipped.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxMemory, maxRequestSize, maxFileSize int64) (*ParsedMultipart, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		return nil, err
	}

	return &ParsedMultipart{Files: extractFiles(r, maxFileSize)}, nil
}

func extractFiles(r *http.Request, maxFileSize int64) []MultipartFile {
	var filesOut []MultipartFile

	for key, fhs := range r.MultipartForm.File {
		for _, fh := range fhs {
			if maxFileSize > 0 && fh.Size > maxFileSize {
				log.Println("skipped too large file:", fh.Filename, fh.Size)
				continue
			}

			f, err := fh.Open()
			if err != nil {
				log.Println("skipped file, could not open:", fh.Filename, err)
				continue
			}

			filesOut = append(filesOut, MultipartFile{Field: key, File: f, Header: fh})
		}
	}

	return filesOut
}
