package util

import (
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
)

// DownloadImage 下载图片，返回原始字节
func DownloadImage(url string) ([]byte, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status code %d", url, resp.StatusCode)
	}

	return io.ReadAll(resp.Body)
}

// OpenImage 打开本地图片
func OpenImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	img, _, err := DecodeImage(data)
	return img, err
}
