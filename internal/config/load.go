package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Load накладывает YAML-файл path поверх cfg. Ключи, которых нет в файле,
// сохраняют текущие значения.
func Load(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// Save сохраняет cfg в YAML, удобно для заготовки файла настроек.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
