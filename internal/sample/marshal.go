package sample

import (
	"encoding/json"
	"fmt"

	"github.com/apk-metadata/apk-metadata-go/internal/catalog"
)

// Smali and Wide serialize as one flat keyed object: the catalog-driven
// flags and the fixed extra fields side by side. That is the shape the
// report document and the DB text columns use, and it round-trips.

func (s Smali) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(s.Flags)+2)
	for id, v := range s.Flags {
		doc[string(id)] = v
	}
	doc["packed"] = s.Packed
	doc["multidex"] = emptyIfNil(s.Multidex)
	return json.Marshal(doc)
}

func (s *Smali) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*s = Smali{Flags: make(Flags), Multidex: []string{}}

	if v, ok := raw["packed"]; ok {
		if err := json.Unmarshal(v, &s.Packed); err != nil {
			return fmt.Errorf("smali.packed: %w", err)
		}
		delete(raw, "packed")
	}
	if v, ok := raw["multidex"]; ok {
		if err := json.Unmarshal(v, &s.Multidex); err != nil {
			return fmt.Errorf("smali.multidex: %w", err)
		}
		delete(raw, "multidex")
	}

	return decodeFlags(raw, s.Flags, "smali")
}

func (w Wide) MarshalJSON() ([]byte, error) {
	doc := make(map[string]interface{}, len(w.Flags)+5)
	for id, v := range w.Flags {
		doc[string(id)] = v
	}
	doc["app_name"] = w.AppName
	doc["phonenumbers"] = emptyIfNil(w.PhoneNumbers)
	doc["urls"] = emptyIfNil(w.URLs)
	doc["base64_strings"] = emptyIfNil(w.Base64Strings)
	doc["apk_zip_url"] = w.APKZipURL
	return json.Marshal(doc)
}

func (w *Wide) UnmarshalJSON(data []byte) error {
	raw := make(map[string]json.RawMessage)
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*w = Wide{
		Flags:         make(Flags),
		PhoneNumbers:  []string{},
		URLs:          []string{},
		Base64Strings: []string{},
	}

	fixed := map[string]interface{}{
		"app_name":       &w.AppName,
		"phonenumbers":   &w.PhoneNumbers,
		"urls":           &w.URLs,
		"base64_strings": &w.Base64Strings,
		"apk_zip_url":    &w.APKZipURL,
	}
	for key, dst := range fixed {
		if v, ok := raw[key]; ok {
			if err := json.Unmarshal(v, dst); err != nil {
				return fmt.Errorf("wide.%s: %w", key, err)
			}
			delete(raw, key)
		}
	}

	return decodeFlags(raw, w.Flags, "wide")
}

// decodeFlags interprets every remaining key as a detector flag. A
// non-boolean value means the document shape is broken, which reset
// discipline should have made impossible.
func decodeFlags(raw map[string]json.RawMessage, flags Flags, category string) error {
	for key, v := range raw {
		var b bool
		if err := json.Unmarshal(v, &b); err != nil {
			return fmt.Errorf("%s.%s: expected detector flag: %w", category, key, err)
		}
		flags[catalog.SectionID(key)] = b
	}
	return nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
