// Package barcode extracts linked-read barcodes from reads and corrects them
// against a whitelist.
package barcode

import (
	"strings"
)

// Tag is the SAM-style tag that carries a barcode in a read name comment.
const Tag = "BX:Z:"

var validBase = [256]bool{'A': true, 'C': true, 'G': true, 'T': true, 'N': true}

func isSequence(s string) bool {
	if len(s) == 0 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !validBase[s[i]] {
			return false
		}
	}
	return true
}

// Parse extracts the barcode from a read name. It recognizes a "BX:Z:" tag
// anywhere in the name, whose value may carry a "-<gem group>" suffix, and a
// trailing ":BARCODE" component of the first word of the name. It returns
// false if the name carries no barcode.
func Parse(name string) (string, bool) {
	if i := strings.Index(name, Tag); i >= 0 {
		v := name[i+len(Tag):]
		if j := strings.IndexAny(v, " \t"); j >= 0 {
			v = v[:j]
		}
		if j := strings.IndexByte(v, '-'); j >= 0 {
			v = v[:j]
		}
		v = strings.ToUpper(v)
		return v, isSequence(v)
	}
	if j := strings.IndexAny(name, " \t"); j >= 0 {
		name = name[:j]
	}
	i := strings.LastIndexByte(name, ':')
	if i < 0 {
		return "", false
	}
	v := strings.ToUpper(name[i+1:])
	return v, isSequence(v)
}

// FromSequence splits an in-line barcode off the start of a read: the first
// barcodeLen bases are the barcode, and the next trimLen bases are discarded.
// It returns false if the read is too short.
func FromSequence(seq, qual []byte, barcodeLen, trimLen int) (barcode string, restSeq, restQual []byte, ok bool) {
	n := barcodeLen + trimLen
	if len(seq) < n {
		return "", seq, qual, false
	}
	barcode = strings.ToUpper(string(seq[:barcodeLen]))
	restSeq = seq[n:]
	if len(qual) >= n {
		restQual = qual[n:]
	}
	return barcode, restSeq, restQual, true
}
