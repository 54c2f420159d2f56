// Copyright 2021 Optakt Labs OÜ
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy of
// the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations under
// the License.

package extractor

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/optakt/block-edge/models/edge"
)

// DecodeArgument interprets the buffer as UTF-8 text and returns the text
// between offset and limit. The bounds are applied after decoding and count
// UTF-16 code units rather than bytes, which is how arguments have always been
// addressed by the aggregator's clients. Out-of-range bounds are clamped to the
// text, and a limit below the offset swaps the two.
func DecodeArgument(buffer []byte, offset int, limit int) string {

	units := utf16.Encode(decodeText(buffer))

	start := clamp(offset, len(units))
	end := clamp(limit, len(units))
	if start > end {
		start, end = end, start
	}

	return string(utf16.Decode(units[start:end]))
}

// Decode decodes a single argument.
func Decode(argument edge.Argument) string {
	return DecodeArgument(argument.Buffer, argument.Offset, argument.Limit)
}

// decodeText decodes UTF-8 text, replacing each maximal ill-formed subpart
// with a single replacement character, as WHATWG decoders do.
func decodeText(buffer []byte) []rune {

	runes := make([]rune, 0, len(buffer))
	for len(buffer) > 0 {
		r, size := utf8.DecodeRune(buffer)
		if r == utf8.RuneError && size <= 1 {
			size = invalidLength(buffer)
		}
		runes = append(runes, r)
		buffer = buffer[size:]
	}

	return runes
}

// invalidLength returns the length of the ill-formed prefix of the buffer. A
// truncated sequence is consumed as a whole, up to the first byte that cannot
// continue it.
func invalidLength(buffer []byte) int {

	lead := buffer[0]
	lower, upper := byte(0x80), byte(0xbf)
	var length int
	switch {
	case lead >= 0xc2 && lead <= 0xdf:
		length = 2
	case lead == 0xe0:
		length, lower = 3, 0xa0
	case lead == 0xed:
		length, upper = 3, 0x9f
	case lead >= 0xe1 && lead <= 0xef:
		length = 3
	case lead == 0xf0:
		length, lower = 4, 0x90
	case lead == 0xf4:
		length, upper = 4, 0x8f
	case lead >= 0xf1 && lead <= 0xf3:
		length = 4
	default:
		return 1
	}

	consumed := 1
	for consumed < length && consumed < len(buffer) {
		next := buffer[consumed]
		if next < lower || next > upper {
			break
		}
		consumed++
		lower, upper = 0x80, 0xbf
	}

	return consumed
}

func clamp(index int, length int) int {
	if index < 0 {
		return 0
	}
	if index > length {
		return length
	}
	return index
}
