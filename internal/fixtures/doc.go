// Package fixtures holds the services exercised by the lazy registration tests:
// a pair of dependent services with construction markers, an unexported
// interface proxied under the same-package trust grant, and a closed generic
// interface with a method-level type argument.
//
// lazy_gen.go is produced by lazygen from lazygen.yaml.
package fixtures

//go:generate go run github.com/sghaida/lazyproxy/cmd/lazygen --spec lazygen.yaml
