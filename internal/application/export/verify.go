package export

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"

	"github.com/jhoicas/rechnungsverwaltung/internal/domain"
	"github.com/jhoicas/rechnungsverwaltung/internal/domain/exportdoc"
)

const manifestDigestKey = "xml_c14n_sha256"

// VerifyBundle comprueba que el XML del paquete coincide con el digest del manifiesto.
// Devuelve el digest verificado.
func VerifyBundle(files []File) (string, error) {
	var xmlData, manifestData []byte
	for _, f := range files {
		switch f.Name {
		case BundleXMLName:
			xmlData = f.Data
		case BundleManifestName:
			manifestData = f.Data
		}
	}
	if xmlData == nil || manifestData == nil {
		return "", fmt.Errorf("%w: el paquete no contiene %s y %s", domain.ErrInvalidInput, BundleXMLName, BundleManifestName)
	}

	want := manifestValue(manifestData, manifestDigestKey)
	if want == "" {
		return "", fmt.Errorf("%w: manifiesto sin %s", domain.ErrInvalidInput, manifestDigestKey)
	}
	got, err := exportdoc.DigestXML(xmlData)
	if err != nil {
		return "", err
	}
	if got != want {
		return "", fmt.Errorf("%w: digest %s, manifiesto %s", domain.ErrConflict, got, want)
	}
	return got, nil
}

func manifestValue(data []byte, key string) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		k, v, ok := strings.Cut(sc.Text(), ":")
		if ok && strings.TrimSpace(k) == key {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
