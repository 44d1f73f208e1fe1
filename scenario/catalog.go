package scenario

import "sort"

// Built-in scenario names accepted by Lookup.
const (
	NameCorpSmall = "corp-small"
	NameOpsMid    = "ops-mid"
)

var catalog = map[string]func() *Scenario{
	NameCorpSmall: CorpSmall,
	NameOpsMid:    OpsMid,
}

// CatalogNames returns the built-in scenario names in sorted order.
func CatalogNames() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns a fresh copy of the built-in scenario called name.
func Lookup(name string) (*Scenario, bool) {
	fn, ok := catalog[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// CorpSmall is a three-host corporate network: an employee laptop, a
// Windows file server and a Linux payroll database.
//
//	EMP-LAPTOP --SMB,HTTP--> FILE-SRV --SSH,WinRM--> PAYROLL-DB
//	EMP-LAPTOP <---HTTP----- FILE-SRV <----SSH------ PAYROLL-DB
func CorpSmall() *Scenario {
	return NewBuilder(NameCorpSmall).
		AddSystem(&System{
			Name:             "EMP-LAPTOP",
			OS:               "Windows 10",
			Services:         []string{"browser"},
			Credentials:      []string{"emp@corp"},
			InitialPrivilege: PrivUser,
		}).
		AddSystem(&System{
			Name:        "FILE-SRV",
			OS:          "Windows Server 2019",
			Services:    []string{"SMB", "WinRM"},
			Credentials: []string{"svc-backup"},
		}).
		AddSystem(&System{
			Name:        "PAYROLL-DB",
			OS:          "Ubuntu 20.04",
			Services:    []string{"PostgreSQL", "SSH"},
			Credentials: []string{"svc-payroll"},
		}).
		Link("EMP-LAPTOP", "FILE-SRV", []string{"SMB", "HTTP"}, []string{"HTTP"}).
		Link("FILE-SRV", "PAYROLL-DB", []string{"SSH", "WinRM"}, []string{"SSH"}).
		AddExploit(lootCreds()).
		AddExploit(&Exploit{
			Name:              "PassTheHash",
			Access:            Lateral("SSH"),
			RequiredPrivilege: PrivUser,
			RequiredCredTag:   "svc-",
			GrantsPrivilege:   PrivUser,
			Reuse:             Limited(2),
		}).
		AddExploit(printNightmare()).
		AddExploit(smbGhost()).
		mustBuild()
}

// OpsMid is a five-host operations network reached through a jump host.
func OpsMid() *Scenario {
	return NewBuilder(NameOpsMid).
		AddSystem(&System{
			Name:             "WORKSTATION-01",
			OS:               "Windows 11",
			Services:         []string{"browser"},
			Credentials:      []string{"emp@corp"},
			InitialPrivilege: PrivUser,
		}).
		AddSystem(&System{
			Name:        "JUMP-HOST",
			OS:          "Windows Server 2022",
			Services:    []string{"RDP", "WinRM"},
			Credentials: []string{"svc-helpdesk"},
		}).
		AddSystem(&System{
			Name:        "FILES-01",
			OS:          "Windows Server 2019",
			Services:    []string{"SMB", "WinRM"},
			Credentials: []string{"svc-backup", "svc-files"},
		}).
		AddSystem(&System{
			Name:     "APP-API",
			OS:       "Ubuntu 22.04",
			Services: []string{"HTTP", "SSH"},
		}).
		AddSystem(&System{
			Name:        "APP-DB",
			OS:          "Ubuntu 22.04",
			Services:    []string{"PostgreSQL", "SSH"},
			Credentials: []string{"svc-db"},
		}).
		Link("WORKSTATION-01", "JUMP-HOST", []string{"RDP", "HTTP"}, []string{"HTTP"}).
		Link("JUMP-HOST", "FILES-01", []string{"WinRM", "SMB"}, []string{"WinRM"}).
		Link("FILES-01", "APP-API", []string{"HTTP", "SSH"}, []string{"HTTP"}).
		Link("APP-API", "APP-DB", []string{"SSH"}, []string{"SSH"}).
		AddExploit(lootCreds()).
		AddExploit(&Exploit{
			Name:              "PassTheHash",
			Access:            Lateral("WinRM"),
			RequiredPrivilege: PrivUser,
			RequiredCredTag:   "svc-",
			GrantsPrivilege:   PrivUser,
			Reuse:             Limited(3),
		}).
		AddExploit(&Exploit{
			Name:              "SSH-Key-Reuse",
			Access:            Lateral("SSH"),
			RequiredPrivilege: PrivUser,
			RequiredCredTag:   "svc-",
			GrantsPrivilege:   PrivUser,
			Reuse:             Unlimited(),
		}).
		AddExploit(printNightmare()).
		AddExploit(smbGhost()).
		AddExploit(&Exploit{
			Name:              "RDP-Login",
			Access:            Lateral("RDP"),
			RequiredPrivilege: PrivUser,
			RequiredCredTag:   "emp@",
			GrantsPrivilege:   PrivUser,
			Reuse:             Limited(2),
		}).
		mustBuild()
}

func lootCreds() *Exploit {
	return &Exploit{
		Name:              "LootCreds",
		Access:            Local(),
		RequiredPrivilege: PrivAdmin,
		GrantsPrivilege:   PrivAdmin,
		LootsCredentials:  true,
		Reuse:             Unlimited(),
	}
}

func printNightmare() *Exploit {
	return &Exploit{
		Name:              "CVE-2021-34527-PrintNightmare",
		Access:            Local(),
		RequiredPrivilege: PrivUser,
		OSContains:        "Windows",
		GrantsPrivilege:   PrivAdmin,
		Reuse:             Unlimited(),
	}
}

func smbGhost() *Exploit {
	return &Exploit{
		Name:              "CVE-2020-0796-SMBGhost",
		Access:            Lateral("SMB"),
		RequiredPrivilege: PrivUser,
		GrantsPrivilege:   PrivAdmin,
		Reuse:             OncePerSystem(),
	}
}

func (b *Builder) mustBuild() *Scenario {
	sc, err := b.Build()
	if err != nil {
		panic("scenario: invalid built-in scenario: " + err.Error())
	}
	return sc
}
