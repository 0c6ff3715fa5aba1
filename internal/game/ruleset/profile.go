package ruleset

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Stats is the four-stat block every card carries.
type Stats struct {
	HP      int `yaml:"hp"`
	Attack  int `yaml:"attack"`
	Defense int `yaml:"defense"`
	Speed   int `yaml:"speed"`
}

// Profile describes a class: its level-1 stats, per-level growth and the
// pool of abilities a card of this class may be assigned.
type Profile struct {
	Class       Class    `yaml:"class"`
	Description string   `yaml:"description"`
	Color       int      `yaml:"color"`
	Base        Stats    `yaml:"base"`
	Growth      Stats    `yaml:"growth"`
	Abilities   []string `yaml:"abilities"`
}

// StatsAtLevel returns the profile's stats for a card of the given level.
// Growth is applied once per level above 1; levels below 1 are treated as 1.
//
// Postcondition: every returned stat is >= the corresponding base stat.
func (p *Profile) StatsAtLevel(level int) Stats {
	n := level - 1
	if n < 0 {
		n = 0
	}
	return Stats{
		HP:      p.Base.HP + p.Growth.HP*n,
		Attack:  p.Base.Attack + p.Growth.Attack*n,
		Defense: p.Base.Defense + p.Growth.Defense*n,
		Speed:   p.Base.Speed + p.Growth.Speed*n,
	}
}

// Profiles maps each class to its profile.
type Profiles map[Class]*Profile

// DefaultProfiles returns the built-in class profiles.
//
// Postcondition: Contains exactly one profile per entry in AllClasses.
func DefaultProfiles() Profiles {
	return Profiles{
		ClassTank: {
			Class:       ClassTank,
			Description: "High HP and Defense, focuses on survival and protection",
			Color:       0x4A90E2,
			Base:        Stats{HP: 1500, Attack: 500, Defense: 800, Speed: 50},
			Growth:      Stats{HP: 50, Attack: 10, Defense: 10, Speed: 2},
			Abilities:   []string{"taunt", "shield", "regenerate", "counter", "guardian", "fortify"},
		},
		ClassDamage: {
			Class:       ClassDamage,
			Description: "High Attack power, focuses on dealing damage",
			Color:       0xE74C3C,
			Base:        Stats{HP: 1000, Attack: 800, Defense: 500, Speed: 70},
			Growth:      Stats{HP: 30, Attack: 15, Defense: 5, Speed: 3},
			Abilities:   []string{"power_strike", "berserker_rage", "critical_strike", "life_steal", "execute", "rampage"},
		},
		ClassSupport: {
			Class:       ClassSupport,
			Description: "Balanced stats with healing and buff abilities",
			Color:       0x2ECC71,
			Base:        Stats{HP: 1200, Attack: 600, Defense: 600, Speed: 60},
			Growth:      Stats{HP: 30, Attack: 15, Defense: 15, Speed: 3},
			Abilities:   []string{"heal", "power_boost", "barrier", "sacrifice"},
		},
		ClassIntel: {
			Class:       ClassIntel,
			Description: "High Speed and strategic abilities, focuses on control",
			Color:       0x9B59B6,
			Base:        Stats{HP: 1100, Attack: 700, Defense: 550, Speed: 80},
			Growth:      Stats{HP: 20, Attack: 20, Defense: 10, Speed: 20},
			Abilities:   []string{"stun_lock", "freeze", "confuse", "weaken", "armor_break", "slow"},
		},
	}
}

// LoadProfiles reads every YAML file in dir as a Profile and overlays the
// result on DefaultProfiles. A file naming a class replaces that class's profile.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns a Profiles containing every class, or a non-nil error.
func LoadProfiles(dir string) (Profiles, error) {
	files, err := YAMLFiles(dir)
	if err != nil {
		return nil, err
	}
	profiles := DefaultProfiles()
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		var p Profile
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return nil, fmt.Errorf("parsing class profile %s: %w", path, err)
		}
		if p.Class == ClassUnknown {
			return nil, fmt.Errorf("class profile %s: class is required", path)
		}
		if p.Base.HP <= 0 {
			return nil, fmt.Errorf("class profile %s: base hp must be > 0", path)
		}
		profiles[p.Class] = &p
	}
	return profiles, nil
}
