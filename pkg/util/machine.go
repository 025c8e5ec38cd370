package util

import (
	"os"
	"strings"
	"sync"

	"github.com/denisbrodbeck/machineid"
)

var (
	machineID     string
	machineIDOnce sync.Once
)

// GetMachineID returns a stable identifier of the current host, used to salt signing keys.
// Empty when neither machineid nor the board serial is readable.
// GetMachineID 获取当前机器的唯一标识（用于签名密钥加盐），全部获取失败时返回空字符串
func GetMachineID() string {
	machineIDOnce.Do(func() {
		if id, err := machineid.ProtectedID("fast-note-share-service"); err == nil && id != "" {
			machineID = id
			return
		}
		if content, err := os.ReadFile("/sys/class/dmi/id/board_serial"); err == nil {
			machineID = strings.TrimSpace(string(content))
		}
	})
	return machineID
}
