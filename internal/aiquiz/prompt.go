package aiquiz

import (
	"fmt"
	"strings"

	"hero-quiz-service/internal/domain"
)

const systemPrompt = "Anda adalah guru sejarah Indonesia yang kreatif dan teliti."

func quizPrompt(hero domain.Hero, count int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Buat %d soal pilihan ganda (A/B/C) yang bervariasi tentang pahlawan %q.\n", count, hero.Name)
	b.WriteString("Gunakan gaya dan jenis pertanyaan yang berbeda untuk setiap soal.\n\n")

	b.WriteString("Materi sumber:\n")
	fmt.Fprintf(&b, "- Ringkasan: %s\n", strings.TrimSpace(hero.Summary))
	fmt.Fprintf(&b, "- Sorotan: %s\n\n", strings.Join(hero.Highlights, ", "))

	b.WriteString("Jenis pertanyaan yang boleh dipakai:\n")
	b.WriteString("1. Faktual: tanggal, tempat, atau peristiwa.\n")
	b.WriteString("2. Konseptual: peran, gagasan, atau dampak perjuangan.\n")
	b.WriteString("3. Julukan atau kutipan terkenal, jika ada.\n")
	b.WriteString("4. Sebab-akibat sebuah peristiwa.\n\n")

	b.WriteString("Pilihan pengecoh harus masuk akal namun salah.\n")
	b.WriteString("Balas HANYA dengan JSON ketat tanpa teks lain, persis dengan bentuk:\n")
	b.WriteString(`{"questions":[{"prompt":"...","choices":["A ...","B ...","C ..."],"answerIndex":0,"explanation":"..."}]}`)
	return b.String()
}

func summaryPrompt(text string, sentences int) string {
	return fmt.Sprintf(
		"Ringkas teks berikut menjadi %d kalimat dengan bahasa sederhana (setingkat SMP), tanpa menambah fakta baru:\n\n%s",
		sentences, text,
	)
}
