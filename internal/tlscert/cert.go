// Package tlscert самоподписанный сертификат для запуска сервера по HTTPS без внешнего УЦ.
package tlscert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const defaultValidity = 365 * 24 * time.Hour

// Ошибки проверки пары сертификат/ключ.
var (
	ErrBlankPEM        = errors.New("pem is blank")                 // Файл пустой или отсутствует
	ErrCertExpired     = errors.New("certificate is expired")       // Срок действия истек
	ErrCertNotValidYet = errors.New("certificate is not valid yet") // Сертификат еще не вступил в силу
)

// Options параметры выпуска сертификата.
type Options struct {
	Hosts     []string // DNS имена и IP адреса. Пусто означает localhost
	NotBefore time.Time
	Validity  time.Duration
}

// Generate выпускает самоподписанную пару сертификат/ключ в PEM.
func Generate(opts Options) ([]byte, []byte, error) {
	if opts.NotBefore.IsZero() {
		opts.NotBefore = time.Now()
	}
	if opts.Validity == 0 {
		opts.Validity = defaultValidity
	}
	if len(opts.Hosts) == 0 {
		opts.Hosts = []string{"localhost", "127.0.0.1", "::1"}
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128)) //nolint:mnd
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial number: %w", err)
	}
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate private key: %w", err)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"shortener"}},
		NotBefore:             opts.NotBefore,
		NotAfter:              opts.NotBefore.Add(opts.Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range opts.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &privKey.PublicKey, privKey)
	if err != nil {
		return nil, nil, fmt.Errorf("generate certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(privKey)
	if err != nil {
		return nil, nil, fmt.Errorf("marshal private key: %w", err)
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	return certPEM, keyPEM, nil
}

// Check проверяет, что ключ подходит к сертификату и сертификат действует в момент now.
func Check(certPEM, keyPEM []byte, now time.Time) error {
	if len(certPEM) == 0 || len(keyPEM) == 0 {
		return ErrBlankPEM
	}
	pair, err := tls.X509KeyPair(certPEM, keyPEM)
	if err != nil {
		return fmt.Errorf("load key pair: %w", err)
	}
	cert, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return fmt.Errorf("parse certificate: %w", err)
	}
	if cert.NotBefore.After(now) {
		return ErrCertNotValidYet
	}
	if cert.NotAfter.Before(now) {
		return ErrCertExpired
	}
	return nil
}

// EnsurePair оставляет рабочую пару файлов как есть, а отсутствующую, пустую или просроченную
// перевыпускает. Возвращает true, если файлы были записаны заново.
func EnsurePair(certPath, keyPath string, opts Options) (bool, error) {
	certPEM, errCert := readIfExists(certPath)
	if errCert != nil {
		return false, errCert
	}
	keyPEM, errKey := readIfExists(keyPath)
	if errKey != nil {
		return false, errKey
	}

	checkErr := Check(certPEM, keyPEM, time.Now())
	switch {
	case checkErr == nil:
		return false, nil
	case errors.Is(checkErr, ErrBlankPEM), errors.Is(checkErr, ErrCertExpired):
	default:
		return false, fmt.Errorf("check certificate and private key: %w", checkErr)
	}

	newCert, newKey, err := Generate(opts)
	if err != nil {
		return false, err
	}
	if err = writeFile(certPath, newCert); err != nil {
		return false, fmt.Errorf("save certificate: %w", err)
	}
	if err = writeFile(keyPath, newKey); err != nil {
		return false, fmt.Errorf("save private key: %w", err)
	}
	return true, nil
}

func readIfExists(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("create directory: %w", err)
	}
	return os.WriteFile(path, data, 0o600) //nolint:wrapcheck,mnd
}
