// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// MPU-9250 register addresses used by the recorder. Names follow the
// InvenSense register map.
const (
	regSmplrtDiv    = 0x19 // Sample Rate = Internal_Sample_Rate / (1 + SMPLRT_DIV)
	regConfig       = 0x1A // DLPF_CFG in bits 2:0
	regGyroConfig   = 0x1B // GYRO_FS_SEL in bits 4:3
	regAccelConfig  = 0x1C // ACCEL_FS_SEL in bits 4:3
	regAccelConfig2 = 0x1D // A_DLPFCFG in bits 2:0
	regAccelXoutH   = 0x3B // start of the 14-byte accel/temp/gyro burst
	regPwrMgmt1     = 0x6B
	regWhoAmI       = 0x75

	// SPI read transactions set the MSB of the register address.
	regReadFlag = 0x80

	whoAmIMPU9250 = 0x71
	whoAmIMPU9255 = 0x73
)

// Sensitivities per full-scale range selection, from the datasheet.
var (
	// LSB per g for ACCEL_FS_SEL 0..3 (±2g, ±4g, ±8g, ±16g).
	accelLSBPerG = [4]float64{16384, 8192, 4096, 2048}
	// LSB per °/s for GYRO_FS_SEL 0..3 (±250, ±500, ±1000, ±2000 °/s).
	gyroLSBPerDPS = [4]float64{131, 65.5, 32.8, 16.4}
)

const standardGravity = 9.80665 // m/s^2 per g
