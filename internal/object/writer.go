package object

import (
	"encoding/hex"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"golang.org/x/crypto/blake2b"

	"github.com/tangzhangming/elfc/internal/errors"
)

// WriteFile 把目标文件字节写入 path
//
// 先写同目录下的临时文件再重命名，失败时不会留下半个目标文件。
func WriteFile(path string, data []byte) (err error) {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*")
	if err != nil {
		return errors.New(errors.E1004, path).Wrap(err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, os.Remove(tmp.Name()))
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		err = multierr.Append(err, tmp.Close())
		return errors.New(errors.E1004, path).Wrap(err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		err = multierr.Append(err, tmp.Close())
		return errors.New(errors.E1004, path).Wrap(err)
	}
	if err = tmp.Close(); err != nil {
		return errors.New(errors.E1004, path).Wrap(err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return errors.New(errors.E1004, path).Wrap(err)
	}
	return nil
}

// Digest 返回目标文件内容的 BLAKE2b-256 摘要（十六进制）
func Digest(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}
