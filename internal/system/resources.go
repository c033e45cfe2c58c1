package system

import (
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	log "github.com/sirupsen/logrus"
)

// bytesPerWorker - сколько буферов размером с кадр держит один поток:
// выходной кадр, поле (2 x float32), координаты (2 x float32) и место
// в окне переупорядочивания.
const bytesPerWorker = 1 + 8 + 8 + 2

// SuggestWorkers подбирает число потоков по логическим CPU и свободной памяти.
// frameBytes - размер одного выходного кадра. Результат не меньше одного.
func SuggestWorkers(frameBytes int) int {
	workers := runtime.NumCPU()
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		workers = n
	}

	if frameBytes > 0 {
		if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
			byMem := int(vm.Available / uint64(frameBytes*bytesPerWorker))
			if byMem < workers {
				log.Debugf("[*] workers limited by memory: %d -> %d", workers, byMem)
				workers = byMem
			}
		}
	}
	return max(1, workers)
}

// MemoryStats - снимок памяти для отчета о производительности.
type MemoryStats struct {
	TotalMB     uint64
	AvailableMB uint64
	UsedPercent float64
}

func ReadMemoryStats() (MemoryStats, error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return MemoryStats{}, err
	}
	return MemoryStats{
		TotalMB:     vm.Total >> 20,
		AvailableMB: vm.Available >> 20,
		UsedPercent: vm.UsedPercent,
	}, nil
}
