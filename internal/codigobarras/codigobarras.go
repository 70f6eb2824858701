// Package codigobarras classifies scanned codes and computes EAN check digits.
// It has no I/O so the handlers, the importer and the scanner endpoint share
// exactly the same rules.
package codigobarras

import (
	"fmt"
	"regexp"
	"strings"
)

// Tipo is the detected symbology of a scanned string.
type Tipo string

const (
	EAN13       Tipo = "EAN13"
	EAN8        Tipo = "EAN8"
	UPCA        Tipo = "UPCA"
	Herramienta Tipo = "HERRAMIENTA"
	Code128     Tipo = "CODE128"
	Desconocido Tipo = "DESCONOCIDO"
)

// PrefijoInterno is the GS1 "restricted circulation" prefix used for codes
// generated in-house for articles that arrive without a barcode.
const PrefijoInterno = "200"

var codigoHerramientaRe = regexp.MustCompile(`^[A-Z]{2,6}-\d{3,}$`)

// Resultado is the outcome of Clasificar.
type Resultado struct {
	Codigo string `json:"codigo"`
	Tipo   Tipo   `json:"tipo"`
	// Valido reports whether the check digit matches for EAN/UPC codes.
	// Non-numeric symbologies are always valid when recognised.
	Valido bool `json:"valido"`
}

// Clasificar detects the symbology of a raw scanner reading.
func Clasificar(raw string) Resultado {
	code := strings.TrimSpace(raw)
	res := Resultado{Codigo: code, Tipo: Desconocido}
	if code == "" {
		return res
	}

	if soloDigitos(code) {
		switch len(code) {
		case 13:
			res.Tipo = EAN13
			res.Valido = checksumOK(code)
			return res
		case 8:
			res.Tipo = EAN8
			res.Valido = checksumOK(code)
			return res
		case 12:
			res.Tipo = UPCA
			res.Valido = checksumOK(code)
			return res
		}
	}

	// tool codes match in any case and come back upper-cased, as units are stored
	upper := strings.ToUpper(code)
	if codigoHerramientaRe.MatchString(upper) {
		res.Codigo = upper
		res.Tipo = Herramienta
		res.Valido = true
		return res
	}

	if imprimibleASCII(code) {
		res.Tipo = Code128
		res.Valido = true
	}
	return res
}

// EsEAN13Valido reports whether code is a 13-digit string with a correct check digit.
func EsEAN13Valido(code string) bool {
	return len(code) == 13 && soloDigitos(code) && checksumOK(code)
}

// DigitoControl computes the GS1 mod-10 check digit for the payload
// (the code without its last digit). Works for EAN-8, UPC-A and EAN-13.
func DigitoControl(payload string) (int, error) {
	if payload == "" || !soloDigitos(payload) {
		return 0, fmt.Errorf("payload %q no es numerico", payload)
	}
	sum := 0
	// weights alternate 3,1 starting from the rightmost payload digit
	for i := len(payload) - 1; i >= 0; i-- {
		d := int(payload[i] - '0')
		if (len(payload)-1-i)%2 == 0 {
			sum += d * 3
		} else {
			sum += d
		}
	}
	return (10 - sum%10) % 10, nil
}

// GenerarEAN13Interno builds an in-store EAN-13 from a sequence number.
// seq must fit in the 9 digits after the prefix.
func GenerarEAN13Interno(seq int64) (string, error) {
	if seq < 0 || seq > 999_999_999 {
		return "", fmt.Errorf("secuencia fuera de rango: %d", seq)
	}
	payload := fmt.Sprintf("%s%09d", PrefijoInterno, seq)
	d, err := DigitoControl(payload)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%d", payload, d), nil
}

func checksumOK(code string) bool {
	d, err := DigitoControl(code[:len(code)-1])
	if err != nil {
		return false
	}
	return int(code[len(code)-1]-'0') == d
}

func soloDigitos(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func imprimibleASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 32 || s[i] > 126 {
			return false
		}
	}
	return true
}
