// SPDX-License-Identifier: MPL-2.0

package nugetconfig

import (
	"encoding/xml"
	"fmt"
	"strings"
	"unicode"
)

const (
	keyUsername          = "Username"
	keyClearTextPassword = "ClearTextPassword"
)

type (
	document struct {
		XMLName        xml.Name           `xml:"configuration"`
		PackageSources sourceList         `xml:"packageSources"`
		Credentials    *credentialSection `xml:"packageSourceCredentials,omitempty"`
	}

	sourceList struct {
		Adds []addEntry `xml:"add"`
	}

	addEntry struct {
		Key   string `xml:"key,attr"`
		Value string `xml:"value,attr"`
	}

	credentialSection struct {
		Sources []sourceCredential `xml:",any"`
	}

	sourceCredential struct {
		XMLName xml.Name
		Adds    []addEntry `xml:"add"`
	}
)

func (d *document) marshal() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func (d *document) setCredentials(sourceName, username, password string) {
	if d.Credentials == nil {
		d.Credentials = &credentialSection{}
	}
	name := EncodeSourceName(sourceName)
	entry := sourceCredential{
		XMLName: xml.Name{Local: name},
		Adds: []addEntry{
			{Key: keyUsername, Value: username},
			{Key: keyClearTextPassword, Value: password},
		},
	}
	for i, existing := range d.Credentials.Sources {
		if existing.XMLName.Local == name {
			d.Credentials.Sources[i] = entry
			return
		}
	}
	d.Credentials.Sources = append(d.Credentials.Sources, entry)
}

// EncodeSourceName turns a source name into a valid XML element name. Each
// character that cannot appear in a name is written as _xHHHH_.
func EncodeSourceName(name string) string {
	var b strings.Builder
	for i, r := range name {
		if isNameRune(r, i == 0) {
			b.WriteRune(r)
			continue
		}
		if r > 0xFFFF {
			fmt.Fprintf(&b, "_x%08X_", r)
			continue
		}
		fmt.Fprintf(&b, "_x%04X_", r)
	}
	return b.String()
}

func isNameRune(r rune, first bool) bool {
	if r == '_' || unicode.IsLetter(r) {
		return true
	}
	if first {
		return false
	}
	return r == '-' || r == '.' || unicode.IsDigit(r)
}
