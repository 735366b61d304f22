package pkg

import "github.com/provide-io/featurecat/go/featurecat/pkg/loader"

var (
	// File errors 📁
	ErrCatalogNotFound = loader.ErrCatalogNotFound
	ErrInvalidFileName = loader.ErrInvalidFileName
)
