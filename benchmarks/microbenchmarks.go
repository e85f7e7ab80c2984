package benchmarks

import "github.com/sarchlab/arm7sim/emu"

// DataBase is the data area used by the memory benchmarks.
const DataBase = 0x8000

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// targets a specific part of the cycle model.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		arithmeticSequential(),
		dependencyChain(),
		memorySequential(),
		functionCalls(),
		branchTaken(),
		mixedOperations(),
		matrixMultiply2x2(),
		loopSimulation(),
	}
}

// GetCoreBenchmarks returns a minimal set of 3 core benchmarks for quick
// validation: loop, matrix multiply, branch-heavy code.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		loopSimulation(),
		matrixMultiply2x2(),
		branchTaken(),
	}
}

func program(body []uint32) []byte {
	return BuildProgram(append(body, EncodeExit()...)...)
}

// 1. Arithmetic Sequential - sequential fetches only
func arithmeticSequential() Benchmark {
	body := make([]uint32, 0, 20)
	for i := 0; i < 20; i++ {
		r := uint8(i % 5)
		body = append(body, EncodeADDImm(r, r, 1, false))
	}
	return Benchmark{
		Name:         "arithmetic_sequential",
		Description:  "20 ADD immediates over 5 registers - one S cycle each",
		Program:      program(body),
		ExpectedExit: 4,
	}
}

// 2. Dependency Chain - the core has no forwarding hazards, so this must
// cost the same as arithmetic_sequential
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "20 dependent ADDs (r0 = r0 + 1)",
		Setup: func(cpu *emu.CPU, memory *emu.Memory) {
			cpu.SetReg(0, 0)
		},
		Program:      buildDependencyChain(20),
		ExpectedExit: 20,
	}
}

func buildDependencyChain(n int) []byte {
	body := make([]uint32, 0, n)
	for i := 0; i < n; i++ {
		body = append(body, EncodeADDImm(0, 0, 1, false))
	}
	return program(body)
}

// 3. Memory Sequential - non-sequential data accesses
func memorySequential() Benchmark {
	body := make([]uint32, 0, 20)
	for i := uint16(0); i < 10; i++ {
		body = append(body, EncodeSTRImm(0, 1, 4*i), EncodeLDRImm(0, 1, 4*i))
	}
	return Benchmark{
		Name:        "memory_sequential",
		Description: "10 store/load pairs to sequential words - measures N-cycle data accesses",
		Setup: func(cpu *emu.CPU, memory *emu.Memory) {
			cpu.SetReg(1, DataBase)
			cpu.SetReg(0, 42)
		},
		Program:      program(body),
		ExpectedExit: 42,
	}
}

// 4. Function Calls - BL / BX LR pairs
func functionCalls() Benchmark {
	return Benchmark{
		Name:        "function_calls",
		Description: "5 function calls (BL + BX LR pairs) - measures refill overhead",
		Setup: func(cpu *emu.CPU, memory *emu.Memory) {
			cpu.SetReg(0, 0)
		},
		Program: BuildProgram(
			// main: call add_one 5 times
			EncodeBL(28),
			EncodeBL(24),
			EncodeBL(20),
			EncodeBL(16),
			EncodeBL(12),
			EncodeMOVImm(7, 1),
			EncodeSWI(0),

			// add_one
			EncodeADDImm(0, 0, 1, false),
			EncodeBX(14),
		),
		ExpectedExit: 5,
	}
}

// 5. Branch Taken - every branch skips a poisoned instruction
func branchTaken() Benchmark {
	body := make([]uint32, 0, 15)
	for i := 0; i < 5; i++ {
		body = append(body,
			EncodeB(CondAL, 8),             // skip the next instruction
			EncodeADDImm(0, 0, 100, false), // skipped
			EncodeADDImm(0, 0, 1, false),
		)
	}
	return Benchmark{
		Name:         "branch_taken",
		Description:  "5 taken branches - each refills the pipeline",
		Program:      program(body),
		ExpectedExit: 5,
	}
}

// 6. Mixed Operations - block transfers and a locked swap
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "push/pop, swap and ALU - measures block transfer and SWP cycles",
		Setup: func(cpu *emu.CPU, memory *emu.Memory) {
			cpu.SetReg(1, DataBase)
			memory.Write32(DataBase, 30)
		},
		Program: program([]uint32{
			EncodeMOVImm(0, 7),
			EncodeMOVImm(2, 5),
			EncodePush(1<<0 | 1<<2),
			EncodeMOVImm(0, 0),
			EncodeMOVImm(2, 0),
			EncodePop(1<<0 | 1<<2),
			EncodeDPReg(OpADD, false, 0, 0, 2), // r0 = 12
			EncodeSWP(3, 0, 1),                 // r3 = 30, [r1] = 12
			EncodeDPReg(OpADD, false, 0, 0, 3), // r0 = 42
		}),
		ExpectedExit: 42,
	}
}

// 7. Matrix Multiply 2x2 - MUL/MLA internal cycles
func matrixMultiply2x2() Benchmark {
	return Benchmark{
		Name:        "matrix_multiply_2x2",
		Description: "2x2 integer matrix multiply with MUL/MLA, exits with the sum of C",
		Setup: func(cpu *emu.CPU, memory *emu.Memory) {
			cpu.SetReg(1, DataBase)
			// A = [[1, 2], [3, 4]], B = [[5, 6], [7, 8]]
			for i, v := range []uint32{1, 2, 3, 4, 5, 6, 7, 8} {
				memory.Write32(DataBase+uint32(4*i), v)
			}
		},
		Program: program([]uint32{
			EncodeLDRImm(2, 1, 0),  // a00
			EncodeLDRImm(3, 1, 4),  // a01
			EncodeLDRImm(4, 1, 8),  // a10
			EncodeLDRImm(5, 1, 12), // a11
			EncodeLDRImm(6, 1, 16), // b00
			EncodeLDRImm(7, 1, 20), // b01
			EncodeLDRImm(8, 1, 24), // b10
			EncodeLDRImm(9, 1, 28), // b11

			EncodeMUL(10, 2, 6), EncodeMLA(10, 3, 8, 10), // c00 = 19
			EncodeMUL(11, 2, 7), EncodeMLA(11, 3, 9, 11), // c01 = 22
			EncodeMUL(12, 4, 6), EncodeMLA(12, 5, 8, 12), // c10 = 43
			EncodeMUL(0, 4, 7), EncodeMLA(0, 5, 9, 0),    // c11 = 50

			EncodeSTRImm(10, 1, 32),
			EncodeSTRImm(11, 1, 36),
			EncodeSTRImm(12, 1, 40),
			EncodeSTRImm(0, 1, 44),

			EncodeDPReg(OpADD, false, 0, 0, 10),
			EncodeDPReg(OpADD, false, 0, 0, 11),
			EncodeDPReg(OpADD, false, 0, 0, 12),
		}),
		ExpectedExit: 134,
	}
}

// 8. Loop Simulation - a counted loop with a conditional back branch
func loopSimulation() Benchmark {
	return Benchmark{
		Name:        "loop_simulation",
		Description: "10-iteration SUBS/BNE loop - measures taken and fall-through branches",
		Program: program([]uint32{
			EncodeMOVImm(0, 0),
			EncodeMOVImm(1, 10),
			EncodeADDImm(0, 0, 1, false), // loop:
			EncodeSUBImm(1, 1, 1, true),
			EncodeB(CondNE, -8),
		}),
		ExpectedExit: 10,
	}
}
