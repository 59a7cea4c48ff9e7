package types

import "errors"

var (
	// ErrInvalidFileType indicates no offered file was an image.
	ErrInvalidFileType = errors.New("invalid file type")

	// ErrUploadCountExceeded indicates more images were offered than one upload accepts.
	ErrUploadCountExceeded = errors.New("upload count exceeded")

	// ErrImageDecode indicates image data could not be decoded.
	ErrImageDecode = errors.New("image decode failure")

	// ErrNoActiveSelection indicates an edit or export with no selected image.
	ErrNoActiveSelection = errors.New("no active selection")

	// ErrInvalidDimension indicates a non-positive or non-finite dimension.
	ErrInvalidDimension = errors.New("invalid dimension")

	// ErrEmptyBatch indicates a batch export with no images.
	ErrEmptyBatch = errors.New("no images to export")
)
