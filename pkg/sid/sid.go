package sid

import (
	"hash/fnv"
	"os"

	"github.com/sony/sonyflake"
)

type Sid struct {
	sf *sonyflake.Sonyflake
}

func NewSid() *Sid {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{})
	if sf == nil {
		// no private IPv4 address to derive a machine id from (containers, CI)
		sf = sonyflake.NewSonyflake(sonyflake.Settings{MachineID: hostMachineID})
	}
	if sf == nil {
		panic("sonyflake not created")
	}
	return &Sid{sf}
}

func hostMachineID() (uint16, error) {
	host, err := os.Hostname()
	if err != nil {
		return 0, err
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(host))
	return uint16(h.Sum32()) ^ uint16(os.Getpid()), nil
}

func (s Sid) GenString() (string, error) {
	id, err := s.sf.NextID()
	if err != nil {
		return "", err
	}
	return IntToBase62(id), nil
}

func (s Sid) GenUint64() (uint64, error) {
	return s.sf.NextID()
}
