package riscv

import "testing"

func mustTemplate(t *testing.T, mnemonic string) *Template {
	t.Helper()
	tmpl, ok := Lookup(mnemonic)
	if !ok {
		t.Fatalf("Lookup(%q): not found", mnemonic)
	}
	return tmpl
}

func TestEncodeAddi(t *testing.T) {
	// addi x1, x0, 5 -> 0x00500093
	in := &Instruction{Opcode: mustTemplate(t, "addi")}
	in.AddOperand(MakeReg(1))
	in.AddOperand(MakeReg(0))
	in.AddOperand(MakeImm(5))

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := uint32(0x00500093); got != want {
		t.Errorf("addi x1, x0, 5 = 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeLui(t *testing.T) {
	// lui x5, 0x12345 -> 0x123452B7. The parser pre-shifts the raw
	// immediate left by the field's low bit (12) before storing it.
	in := &Instruction{Opcode: mustTemplate(t, "lui")}
	in.AddOperand(MakeReg(5))
	in.AddOperand(MakeImm(0x12345 << 12))

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := uint32(0x123452B7); got != want {
		t.Errorf("lui x5, 0x12345 = 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeBeqForwardBranch(t *testing.T) {
	// beq x1, x2, <8 bytes ahead> -> 0x00208463
	in := &Instruction{Opcode: mustTemplate(t, "beq")}
	in.AddOperand(MakeReg(1))
	in.AddOperand(MakeReg(2))
	in.AddOperand(MakeImm(8))

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := uint32(0x00208463); got != want {
		t.Errorf("beq x1, x2, 8 = 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeJalSelfLoop(t *testing.T) {
	// jal x0, <0 bytes ahead> (an infinite self-loop) -> 0x0000006F
	in := &Instruction{Opcode: mustTemplate(t, "jal")}
	in.AddOperand(MakeReg(0))
	in.AddOperand(MakeImm(0))

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := uint32(0x0000006F); got != want {
		t.Errorf("jal x0, 0 = 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeSw(t *testing.T) {
	// sw x2, 4(x3) -> imm[11:5]=0000000 rs2=x2(00010) rs1=x3(00011)
	// funct3=010 imm[4:0]=00100 opcode=0100011 = 0x00312223.
	// Operands are stored in canonical rs1, rs2 order even though the
	// surface syntax writes rs2 before offset(rs1).
	in := &Instruction{Opcode: mustTemplate(t, "sw")}
	in.AddOperand(MakeReg(3))
	in.AddOperand(MakeReg(2))
	in.AddOperand(MakeImm(4))

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := uint32(0x00312223); got != want {
		t.Errorf("sw x2, 4(x3) = 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeFmaddRegisterOrder(t *testing.T) {
	// fmadd.s f1, f2, f3, f4, rne: rd=1 rs1=2 rs2=3 rs3=4, rm=0 (rne).
	// rs3 is declared leftmost (MSB) in the bit layout but must still read
	// from the fourth assembly operand, not the first.
	in := &Instruction{Opcode: mustTemplate(t, "fmadd.s")}
	in.AddOperand(MakeReg(1))
	in.AddOperand(MakeReg(2))
	in.AddOperand(MakeReg(3))
	in.AddOperand(MakeReg(4))
	in.AddOperand(MakeImm(int64(RoundNearestEven)))

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	wantRs3 := uint32(4) << 27
	wantRs2 := uint32(3) << 20
	wantRs1 := uint32(2) << 15
	wantRd := uint32(1) << 7
	want := wantRs3 | wantRs2 | wantRs1 | wantRd | uint32(0x43)
	if got != want {
		t.Errorf("fmadd.s f1, f2, f3, f4, rne = 0x%08X, want 0x%08X", got, want)
	}
}

func TestEncodeCompressedRegisterRange(t *testing.T) {
	// c.sub only accepts rd'/rs2' in x8..x15. x16 must be rejected.
	in := &Instruction{Opcode: mustTemplate(t, "c.sub")}
	in.AddOperand(MakeReg(16))
	in.AddOperand(MakeReg(9))

	if _, err := Encode(in); err == nil {
		t.Fatal("Encode: expected error for out-of-range compressed register, got nil")
	}
}

func TestEncodeCAddiWidth(t *testing.T) {
	// c.addi x5, 3: funct3=000 imm[5]=0 rd=00101 imm[4:0]=00011 op=01
	in := &Instruction{Opcode: mustTemplate(t, "c.addi")}
	in.AddOperand(MakeReg(5))
	in.AddOperand(MakeImm(3))

	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := uint32(5)<<7 | uint32(3)<<2 | uint32(0x01)
	if got != want {
		t.Errorf("c.addi x5, 3 = 0x%04X, want 0x%04X", got, want)
	}
	bytes, err := EncodeBytes(in)
	if err != nil {
		t.Fatalf("EncodeBytes: %v", err)
	}
	if len(bytes) != 2 {
		t.Errorf("EncodeBytes length = %d, want 2", len(bytes))
	}
}

func TestEncodeEcallZeroOperands(t *testing.T) {
	in := &Instruction{Opcode: mustTemplate(t, "ecall")}
	got, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if want := uint32(0x00000073); got != want {
		t.Errorf("ecall = 0x%08X, want 0x%08X", got, want)
	}
}

func TestLookupNormalization(t *testing.T) {
	a, ok := Lookup("LR_D_AQ")
	if !ok {
		t.Fatal(`Lookup("LR_D_AQ"): not found`)
	}
	b, ok := Lookup("lr.d.aq")
	if !ok {
		t.Fatal(`Lookup("lr.d.aq"): not found`)
	}
	if a != b {
		t.Errorf("LR_D_AQ and lr.d.aq resolved to different templates")
	}
}
