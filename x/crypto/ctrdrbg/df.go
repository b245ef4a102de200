// Copyright (c) 2024-2025 Six After, Inc
//
// This source code is licensed under the Apache 2.0 License found in the
// LICENSE file in the root directory of this source tree.

package ctrdrbg

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/binary"
	"fmt"
)

// initialDFKey is the fixed key used by Block_Cipher_df's internal BCC
// calls, per NIST SP 800-90A Rev. 1 §10.3.2 step 7: the leftmost keylen
// bits of 0x000102030405060708090A0B0C0D0E0F101112131415161718191A1B1C1D1E1F.
var initialDFKey = [32]byte{
	0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07,
	0x08, 0x09, 0x0a, 0x0b, 0x0c, 0x0d, 0x0e, 0x0f,
	0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0x16, 0x17,
	0x18, 0x19, 0x1a, 0x1b, 0x1c, 0x1d, 0x1e, 0x1f,
}

// blockCipherDF implements Block_Cipher_df (NIST SP 800-90A Rev. 1
// §10.3.2) for AES, deriving numBitsToReturn/8 bytes from inputString.
// keyLen selects AES-128 (16) or AES-256 (32) for the derivation
// function's internal block cipher, independent of the key length of
// the DRBG instance ultimately seeded by the result (the standard
// always uses the DRBG's own key length for its own df, which is what
// callers in this package do).
func blockCipherDF(keyLen int, inputString []byte, outputLenBytes int) ([]byte, error) {
	if keyLen != 16 && keyLen != 32 {
		return nil, ErrInvalidKeySize
	}

	// S = L || N || input_string || 0x80, then zero-padded to a
	// multiple of outLen.
	var lBuf, nBuf [4]byte
	binary.BigEndian.PutUint32(lBuf[:], uint32(len(inputString)))
	binary.BigEndian.PutUint32(nBuf[:], uint32(outputLenBytes))

	s := make([]byte, 0, 4+4+len(inputString)+1+outLen)
	s = append(s, lBuf[:]...)
	s = append(s, nBuf[:]...)
	s = append(s, inputString...)
	s = append(s, 0x80)
	for len(s)%outLen != 0 {
		s = append(s, 0x00)
	}

	k := initialDFKey[:keyLen]
	dfCipher, err := aes.NewCipher(k)
	if err != nil {
		return nil, fmt.Errorf("ctrdrbg: df initial cipher: %w", err)
	}

	needed := keyLen + outLen
	temp := make([]byte, 0, needed+outLen)
	var i uint32
	for len(temp) < needed {
		var iv [outLen]byte
		binary.BigEndian.PutUint32(iv[:4], i)
		chained := bcc(dfCipher, append(iv[:], s...))
		temp = append(temp, chained...)
		i++
	}

	dfKey := temp[:keyLen]
	x := make([]byte, outLen)
	copy(x, temp[keyLen:keyLen+outLen])

	outBlock, err := aes.NewCipher(dfKey)
	if err != nil {
		return nil, fmt.Errorf("ctrdrbg: df output cipher: %w", err)
	}

	result := make([]byte, 0, outputLenBytes+outLen)
	for len(result) < outputLenBytes {
		next := make([]byte, outLen)
		outBlock.Encrypt(next, x)
		x = next
		result = append(result, next...)
	}

	zero(temp)
	return result[:outputLenBytes], nil
}

// bcc implements the BCC chaining construct used by Block_Cipher_df
// (NIST SP 800-90A Rev. 1 §10.3.3). data must be a multiple of outLen
// bytes long.
func bcc(block cipher.Block, data []byte) []byte {
	chain := make([]byte, outLen)
	blockBuf := make([]byte, outLen)
	for off := 0; off+outLen <= len(data); off += outLen {
		for i := 0; i < outLen; i++ {
			blockBuf[i] = chain[i] ^ data[off+i]
		}
		block.Encrypt(chain, blockBuf)
	}
	return chain
}
