package bit

import (
	"bytes"
	"io"
	"unicode/utf8"
)

// StringToken holds the decoded VBIOS identity strings. A nil field means the
// corresponding pointer was zero or the bytes did not form a valid
// NUL-terminated string.
type StringToken struct {
	SignOnMessage      *string `json:"sign_on_message"`
	VersionString      *string `json:"version_string"`
	CopyrightString    *string `json:"copyright_string"`
	OEMString          *string `json:"oem_string"`
	OEMVendorName      *string `json:"oem_vendor_name"`
	OEMProductName     *string `json:"oem_product_name"`
	OEMProductRevision *string `json:"oem_product_revision"`
}

// ReadStringToken chases the string pointers of ptrs and reads each string,
// bounded by its declared maximum length.
func ReadStringToken(src io.ReadSeeker, ptrs StringPtrsToken) (*StringToken, error) {
	read := func(ptr uint16, max uint8) (*string, error) {
		if ptr == 0 {
			return nil, nil
		}
		if _, err := src.Seek(int64(ptr), io.SeekStart); err != nil {
			return nil, err
		}
		buf := make([]byte, max)
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, err
		}
		return cStringOf(buf), nil
	}

	var tok StringToken
	var err error
	if tok.SignOnMessage, err = read(ptrs.SignOnMessagePtr, ptrs.SignOnMessageMaxLength); err != nil {
		return nil, err
	}
	if tok.VersionString, err = read(ptrs.VersionStringPtr, ptrs.VersionStringSize); err != nil {
		return nil, err
	}
	if tok.CopyrightString, err = read(ptrs.CopyrightStringPtr, ptrs.CopyrightStringSize); err != nil {
		return nil, err
	}
	if tok.OEMString, err = read(ptrs.OEMStringPtr, ptrs.OEMStringSize); err != nil {
		return nil, err
	}
	if tok.OEMVendorName, err = read(ptrs.OEMVendorNamePtr, ptrs.OEMVendorNameSize); err != nil {
		return nil, err
	}
	if tok.OEMProductName, err = read(ptrs.OEMProductNamePtr, ptrs.OEMProductNameSize); err != nil {
		return nil, err
	}
	if tok.OEMProductRevision, err = read(ptrs.OEMProductRevisionPtr, ptrs.OEMProductRevisionSize); err != nil {
		return nil, err
	}
	return &tok, nil
}

// cStringOf interprets buf as a NUL-terminated string. Buffers without a NUL
// or with invalid UTF-8 yield nil.
func cStringOf(buf []byte) *string {
	i := bytes.IndexByte(buf, 0)
	if i < 0 {
		return nil
	}
	if !utf8.Valid(buf[:i]) {
		return nil
	}
	s := string(buf[:i])
	return &s
}
