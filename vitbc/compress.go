/*
 * Copyright 2022 ByteDance Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package vitbc

import (
    `bytes`
    `io`
    `sync/atomic`

    `github.com/klauspost/compress/zlib`
    `go.uber.org/zap`
)

func compressCode(code []byte, level int) []byte {
    var err error
    var buf bytes.Buffer
    var wr *zlib.Writer

    /* nothing to compress */
    if len(code) == 0 {
        return code
    }

    /* deflate the whole payload */
    if wr, err = zlib.NewWriterLevel(&buf, level); err == nil {
        if _, err = wr.Write(code); err == nil {
            err = wr.Close()
        }
    }

    /* compression is opportunistic, keep the raw bytes if it fails or does not pay off */
    if err != nil {
        atomic.AddUint64(&CompressFallbacks, 1)
        Logger().Debug("code compression failed, storing raw bytes", zap.Int("size", len(code)), zap.Error(err))
        return code
    } else if buf.Len() >= len(code) {
        atomic.AddUint64(&CompressFallbacks, 1)
        Logger().Debug("compressed code is not smaller, storing raw bytes", zap.Int("size", len(code)), zap.Int("compressed", buf.Len()))
        return code
    } else {
        return buf.Bytes()
    }
}

// inflateCode decompresses a CODE payload. It fails unless the payload is
// exactly one complete zlib stream.
func inflateCode(code []byte) ([]byte, error) {
    br := bytes.NewReader(code)
    rd, err := zlib.NewReader(br)

    /* not a zlib header */
    if err != nil {
        return nil, err
    }

    /* inflate and verify the adler32 trailer */
    defer rd.Close()
    ret, err := io.ReadAll(rd)

    /* trailing bytes mean the payload was never a single stream */
    if err != nil {
        return nil, err
    } else if br.Len() != 0 {
        return nil, zlib.ErrHeader
    } else {
        return ret, nil
    }
}
